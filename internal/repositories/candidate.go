package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

// Candidate sheet columns, 1-based.
const (
	colID = iota + 1
	colContactedAt
	colFullName
	colPhone
	colEmail
	colCVReceived
	colCVLink
	colPosition
	colSource
	colComments
	colProfileMatch
	colRecommended
	colPhase
	colEvaluatedAt
	colEvaluator
	columnCount = colEvaluator
)

var CandidateHeaders = []string{
	"ID",
	"Fecha de Contacto",
	"Nombre Completo",
	"Número de WhatsApp",
	"Correo Electrónico",
	"CV Recibido (Sí/No)",
	"Link al CV",
	"Puesto Solicitado",
	"Fuente (Recomendado/Orgánico)",
	"Comentarios del Agente",
	"¿Cumple Perfil? (Sí/No)",
	"Recomendado (Sí/No)",
	"Fase del Proceso",
	"Fecha Evaluación",
	"Evaluador",
}

const (
	candidateIDLayout = "20060102150405"
	sheetTimeLayout   = "2006-01-02 15:04:05"
)

// CandidateRepository is the candidate store keyed by phone. Every call reads the sheet;
// nothing is cached between calls.
type CandidateRepository interface {
	EnsureHeaders(ctx context.Context) error
	FindByPhone(ctx context.Context, phone string) (*models.Candidate, error)
	Create(ctx context.Context, payload models.NewCandidate) (string, error)
	Update(ctx context.Context, id string, patch models.CandidatePatch) error
}

// CandidateDefaults fill create payload fields the caller left empty.
type CandidateDefaults struct {
	Position  string
	Source    string
	Evaluator string
}

type candidateRepository struct {
	sheet    Worksheet
	defaults CandidateDefaults
	timeout  time.Duration
	now      func() time.Time
}

func NewCandidateRepository(sheet Worksheet, defaults CandidateDefaults, timeout time.Duration) CandidateRepository {
	return &candidateRepository{
		sheet:    sheet,
		defaults: defaults,
		timeout:  timeout,
		now:      time.Now,
	}
}

// EnsureHeaders implements CandidateRepository.
func (r *candidateRepository) EnsureHeaders(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ids, err := r.sheet.ColumnValues(ctx, colID)
	if err != nil {
		return storeErr(err)
	}
	if len(ids) > 0 {
		return nil
	}
	if err := r.sheet.AppendRow(ctx, CandidateHeaders); err != nil {
		return storeErr(err)
	}
	return nil
}

// FindByPhone implements CandidateRepository.
func (r *candidateRepository) FindByPhone(ctx context.Context, phone string) (*models.Candidate, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, errors.New("phone is required")
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.findByPhone(ctx, phone)
}

func (r *candidateRepository) findByPhone(ctx context.Context, phone string) (*models.Candidate, error) {
	phones, err := r.sheet.ColumnValues(ctx, colPhone)
	if err != nil {
		return nil, storeErr(err)
	}

	row := findRow(phones, phone)
	if row == 0 {
		return nil, models.ErrNotFound
	}

	values, err := r.sheet.RowValues(ctx, row)
	if err != nil {
		return nil, storeErr(err)
	}
	return rowToCandidate(values), nil
}

// Create implements CandidateRepository.
func (r *candidateRepository) Create(ctx context.Context, payload models.NewCandidate) (string, error) {
	phone := strings.TrimSpace(payload.Phone)
	if phone == "" {
		return "", errors.New("phone is required")
	}

	phase := payload.Phase
	if phase == "" {
		phase = models.PhaseInitial
	}
	if phase.Rank() < 0 {
		return "", fmt.Errorf("%w: unknown phase %q", models.ErrInvalidPhaseTransition, phase)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	// Best effort: two concurrent creates for a new phone can both pass this check.
	if _, err := r.findByPhone(ctx, phone); err == nil {
		return "", models.ErrAlreadyExists
	} else if !errors.Is(err, models.ErrNotFound) {
		return "", err
	}

	now := r.now()
	id := fmt.Sprintf("CAND_%s_%s", phone, now.Format(candidateIDLayout))

	evaluatedAt := ""
	if phase.Rank() >= models.PhaseCVEvaluated.Rank() {
		evaluatedAt = now.Format(sheetTimeLayout)
	}

	row := make([]string, columnCount)
	row[colID-1] = id
	row[colContactedAt-1] = now.Format(sheetTimeLayout)
	row[colFullName-1] = strings.TrimSpace(payload.FullName)
	row[colPhone-1] = phone
	row[colEmail-1] = strings.TrimSpace(payload.Email)
	row[colCVReceived-1] = models.YesNo(payload.CVReceived || strings.TrimSpace(payload.CVLink) != "")
	row[colCVLink-1] = strings.TrimSpace(payload.CVLink)
	row[colPosition-1] = firstNonEmpty(payload.RequestedPosition, r.defaults.Position)
	row[colSource-1] = firstNonEmpty(payload.Source, r.defaults.Source)
	row[colComments-1] = payload.Comments
	row[colProfileMatch-1] = models.YesNo(payload.ProfileMatch)
	row[colRecommended-1] = models.YesNo(payload.Recommended)
	row[colPhase-1] = string(phase)
	row[colEvaluatedAt-1] = evaluatedAt
	row[colEvaluator-1] = firstNonEmpty(payload.Evaluator, r.defaults.Evaluator)

	if err := r.sheet.AppendRow(ctx, row); err != nil {
		return "", storeErr(err)
	}
	return id, nil
}

// Update implements CandidateRepository.
func (r *candidateRepository) Update(ctx context.Context, id string, patch models.CandidatePatch) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("candidate id is required")
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ids, err := r.sheet.ColumnValues(ctx, colID)
	if err != nil {
		return storeErr(err)
	}
	row := findRow(ids, id)
	if row == 0 {
		return fmt.Errorf("%w: id %s", models.ErrNotFound, id)
	}

	if patch.IsEmpty() {
		return nil
	}

	cells := make(map[int]string)

	if patch.FullName != nil {
		cells[colFullName] = strings.TrimSpace(*patch.FullName)
	}
	if patch.Email != nil {
		cells[colEmail] = strings.TrimSpace(*patch.Email)
	}
	if patch.CVReceived != nil {
		cells[colCVReceived] = models.YesNo(*patch.CVReceived)
	}
	if patch.CVLink != nil {
		link := strings.TrimSpace(*patch.CVLink)
		cells[colCVLink] = link
		// A stored CV always counts as received.
		if link != "" {
			cells[colCVReceived] = models.Yes
		}
	}
	if patch.RequestedPosition != nil {
		cells[colPosition] = strings.TrimSpace(*patch.RequestedPosition)
	}
	if patch.Comments != nil {
		cells[colComments] = *patch.Comments
	}
	if patch.ProfileMatch != nil {
		cells[colProfileMatch] = models.YesNo(*patch.ProfileMatch)
	}
	if patch.Recommended != nil {
		cells[colRecommended] = models.YesNo(*patch.Recommended)
	}
	if patch.Phase != nil {
		values, err := r.sheet.RowValues(ctx, row)
		if err != nil {
			return storeErr(err)
		}
		current := models.ProcessPhase(cellAt(values, colPhase))
		next := *patch.Phase
		if next.Rank() < 0 || current.Rank() > next.Rank() {
			return fmt.Errorf("%w: %q -> %q", models.ErrInvalidPhaseTransition, current, next)
		}
		cells[colPhase] = string(next)
	}
	if patch.Evaluator != nil {
		cells[colEvaluator] = *patch.Evaluator
		cells[colEvaluatedAt] = r.now().Format(sheetTimeLayout)
	}

	if err := r.sheet.UpdateCells(ctx, row, cells); err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *candidateRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// findRow returns the 1-based sheet row whose value equals key, skipping the header row.
func findRow(column []string, key string) int {
	for i := 1; i < len(column); i++ {
		if strings.TrimSpace(column[i]) == key {
			return i + 1
		}
	}
	return 0
}

func rowToCandidate(values []string) *models.Candidate {
	return &models.Candidate{
		ID:                cellAt(values, colID),
		ContactedAt:       cellAt(values, colContactedAt),
		FullName:          cellAt(values, colFullName),
		Phone:             cellAt(values, colPhone),
		Email:             cellAt(values, colEmail),
		CVReceived:        models.ParseYesNo(cellAt(values, colCVReceived)),
		CVLink:            cellAt(values, colCVLink),
		RequestedPosition: cellAt(values, colPosition),
		Source:            cellAt(values, colSource),
		Comments:          cellAt(values, colComments),
		ProfileMatch:      models.ParseYesNo(cellAt(values, colProfileMatch)),
		Recommended:       models.ParseYesNo(cellAt(values, colRecommended)),
		Phase:             models.ProcessPhase(cellAt(values, colPhase)),
		EvaluatedAt:       cellAt(values, colEvaluatedAt),
		Evaluator:         cellAt(values, colEvaluator),
	}
}

func storeErr(err error) error {
	if errors.Is(err, models.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
