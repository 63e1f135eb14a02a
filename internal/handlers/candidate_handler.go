package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/repositories"
)

const candidateEvaluationLimit = 10

type CandidateHandler struct {
	candidates repositories.CandidateRepository
	docRepo    repositories.DocumentRepository
	evalRepo   repositories.EvaluationRepository
	log        *zap.Logger
}

func NewCandidateHandler(
	candidates repositories.CandidateRepository,
	docRepo repositories.DocumentRepository,
	evalRepo repositories.EvaluationRepository,
	log *zap.Logger,
) *CandidateHandler {
	return &CandidateHandler{
		candidates: candidates,
		docRepo:    docRepo,
		evalRepo:   evalRepo,
		log:        logger.OrNop(log).Named("candidates"),
	}
}

// HandleGetCandidate returns the candidate row for a phone plus its stored CVs and
// evaluation history.
func (h *CandidateHandler) HandleGetCandidate(c *fiber.Ctx) error {
	phone := strings.TrimSpace(c.Params("phone"))
	phone, _, _ = strings.Cut(phone, "@")

	candidate, err := h.candidates.FindByPhone(c.UserContext(), phone)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.StatusResponse{
			Status:  "not_found",
			Message: "Candidato no encontrado",
		})
	case errors.Is(err, models.ErrStoreUnavailable):
		h.log.Error("candidate store unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.StatusResponse{
			Status:  "error",
			Message: "Registro de candidatos no disponible",
		})
	case err != nil:
		return err
	}

	documents, err := h.docRepo.ListByPhone(c.UserContext(), phone)
	if err != nil {
		h.log.Warn("failed to list documents", zap.String("phone", phone), zap.Error(err))
		documents = []models.Document{}
	}
	evaluations, err := h.evalRepo.ListByPhone(c.UserContext(), phone, candidateEvaluationLimit)
	if err != nil {
		h.log.Warn("failed to list evaluations", zap.String("phone", phone), zap.Error(err))
		evaluations = []models.Evaluation{}
	}

	return c.JSON(models.CandidateResponse{
		Status:      "found",
		CVProcessed: candidate.HasProcessedCV(),
		Candidate:   candidate,
		Documents:   documents,
		Evaluations: evaluations,
	})
}

// HandleGetEvaluation returns one intake evaluation and the CV copy it was run on.
func (h *CandidateHandler) HandleGetEvaluation(c *fiber.Ctx) error {
	evalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.StatusResponse{
			Status:  "error",
			Message: "Invalid evaluation ID format",
		})
	}

	evaluation, err := h.evalRepo.FindByID(c.UserContext(), evalID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.StatusResponse{
				Status:  "not_found",
				Message: "Evaluation not found",
			})
		}
		return err
	}

	response := models.EvaluationResponse{Status: string(evaluation.Status), Evaluation: evaluation}
	if evaluation.CVDocumentID != nil {
		doc, err := h.docRepo.FindByID(c.UserContext(), *evaluation.CVDocumentID)
		if err != nil {
			h.log.Warn("evaluation document missing", zap.String("document_id", evaluation.CVDocumentID.String()), zap.Error(err))
		} else {
			response.CVDocument = doc
		}
	}

	return c.JSON(response)
}
