package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/repositories"
)

type RegistrationAction string

const (
	RegistrationCreated RegistrationAction = "created"
	RegistrationUpdated RegistrationAction = "updated"
)

type RegistrationResult struct {
	CandidateID string
	Name        string
	Action      RegistrationAction
}

// CandidateRegistrar upserts the candidate row for a processed CV.
type CandidateRegistrar interface {
	Register(ctx context.Context, phone string, info *models.CVInfo) (*RegistrationResult, error)
}

type candidateRegistrar struct {
	candidates repositories.CandidateRepository
	evaluator  string
	log        *zap.Logger
}

func NewCandidateRegistrar(candidates repositories.CandidateRepository, evaluator string, log *zap.Logger) CandidateRegistrar {
	return &candidateRegistrar{
		candidates: candidates,
		evaluator:  evaluator,
		log:        logger.OrNop(log).Named("registration"),
	}
}

func (r *candidateRegistrar) Register(ctx context.Context, phone string, info *models.CVInfo) (*RegistrationResult, error) {
	if info == nil {
		return nil, errors.New("cv info is required")
	}

	existing, err := r.candidates.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		return r.update(ctx, existing.ID, info)
	case errors.Is(err, models.ErrNotFound):
	default:
		return nil, err
	}

	id, err := r.candidates.Create(ctx, models.NewCandidate{
		FullName:     extractedOr(info.FullName, ""),
		Phone:        phone,
		Email:        extractedOr(info.Email, ""),
		CVReceived:   true,
		CVLink:       info.CVURL,
		Comments:     info.AgentComments,
		ProfileMatch: info.ProfileMatch,
		Recommended:  info.ProfileMatch,
		Phase:        models.PhaseCVEvaluated,
		Evaluator:    r.evaluator,
	})
	if errors.Is(err, models.ErrAlreadyExists) {
		// Lost a create race for this phone; fall back to updating the winner's row.
		existing, err = r.candidates.FindByPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
		return r.update(ctx, existing.ID, info)
	}
	if err != nil {
		return nil, err
	}

	r.log.Info("candidate registered", zap.String("candidate_id", id))
	return &RegistrationResult{CandidateID: id, Name: displayName(info), Action: RegistrationCreated}, nil
}

func (r *candidateRegistrar) update(ctx context.Context, id string, info *models.CVInfo) (*RegistrationResult, error) {
	phase := models.PhaseCVEvaluated
	patch := models.CandidatePatch{
		CVLink:       &info.CVURL,
		Comments:     &info.AgentComments,
		ProfileMatch: &info.ProfileMatch,
		Recommended:  &info.ProfileMatch,
		Phase:        &phase,
		Evaluator:    &r.evaluator,
	}
	if name := extractedOr(info.FullName, ""); name != "" {
		patch.FullName = &name
	}
	if email := extractedOr(info.Email, ""); email != "" {
		patch.Email = &email
	}

	if err := r.candidates.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update candidate %s: %w", id, err)
	}

	r.log.Info("candidate updated", zap.String("candidate_id", id))
	return &RegistrationResult{CandidateID: id, Name: displayName(info), Action: RegistrationUpdated}, nil
}

// ConfirmationMessage never mentions the profile verdict.
func ConfirmationMessage(res *RegistrationResult) string {
	if res.Action == RegistrationCreated {
		return fmt.Sprintf("¡Gracias, %s! 😊 He recibido tu CV y lo he procesado exitosamente. Tu información ha sido registrada en nuestro sistema con el ID: *%s*. Si tienes alguna pregunta adicional sobre el proceso, ¡no dudes en decírmelo! 🌟", res.Name, res.CandidateID)
	}
	return fmt.Sprintf("¡Hola nuevamente, %s! 😊 He actualizado tu información con el nuevo CV. Tu ID de candidato es: *%s*. ¡Gracias por mantener tu perfil actualizado! 🌟", res.Name, res.CandidateID)
}

func displayName(info *models.CVInfo) string {
	if name := extractedOr(info.FullName, ""); name != "" {
		return name
	}
	if name := strings.TrimSpace(info.UserName); name != "" {
		return name
	}
	return "Usuario"
}

// extractedOr drops the "not extracted" sentinels.
func extractedOr(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" || value == models.NotExtracted || value == models.NotSpecified {
		return fallback
	}
	return value
}
