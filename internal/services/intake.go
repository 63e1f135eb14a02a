package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/repositories"
)

const (
	evaluationSampleRunes = 2000
	previewRunes          = 500

	evaluationFailedComment = "Error en el análisis automático del perfil"
	evaluationEmptyComment  = "No se pudo generar evaluación"
)

// IntakePipeline turns a local CV file into a CVInfo envelope. It never returns an error or
// panics; every failure is reported in the envelope.
type IntakePipeline interface {
	Process(ctx context.Context, req IntakeRequest) *models.IntakeEnvelope
}

type IntakeRequest struct {
	FilePath string
	Phone    string
	UserName string
}

// RequirementsSource supplies the job requirements the verdict is judged against.
type RequirementsSource interface {
	Requirements(ctx context.Context) (string, error)
}

// IntakeDeps wires the pipeline. DocRepo, EvalRepo and Requirements are optional: without
// the repositories no audit rows are written, without Requirements the built-in rubric is used.
type IntakeDeps struct {
	Extractor    TextExtractor
	Storage      StorageService
	Gemini       GeminiService
	Prompts      *PromptBuilder
	DocRepo      repositories.DocumentRepository
	EvalRepo     repositories.EvaluationRepository
	Requirements RequirementsSource
	Position     string
}

type intakePipeline struct {
	extractor    TextExtractor
	storage      StorageService
	gemini       GeminiService
	prompts      *PromptBuilder
	docRepo      repositories.DocumentRepository
	evalRepo     repositories.EvaluationRepository
	requirements RequirementsSource
	position     string
	now          func() time.Time
	log          *zap.Logger
}

func NewIntakePipeline(deps IntakeDeps, log *zap.Logger) IntakePipeline {
	return &intakePipeline{
		extractor:    deps.Extractor,
		storage:      deps.Storage,
		gemini:       deps.Gemini,
		prompts:      deps.Prompts,
		docRepo:      deps.DocRepo,
		evalRepo:     deps.EvalRepo,
		requirements: deps.Requirements,
		position:     deps.Position,
		now:          time.Now,
		log:          logger.OrNop(log).Named("intake"),
	}
}

func (p *intakePipeline) Process(ctx context.Context, req IntakeRequest) (envelope *models.IntakeEnvelope) {
	log := p.log.With(zap.String("phone", req.Phone), zap.String("file", req.FilePath))

	defer func() {
		if r := recover(); r != nil {
			log.Error("intake panicked", zap.Any("panic", r), zap.Stack("stack"))
			envelope = errorEnvelope(models.IntakeErrorInternal, fmt.Errorf("unexpected failure: %v", r), "")
		}
	}()

	ext := DocumentExtension(req.FilePath)
	if ext == "" {
		err := fmt.Errorf("%w (%s). Solo PDF y Word", models.ErrUnsupportedFormat, strings.ToLower(filepath.Ext(req.FilePath)))
		log.Info("unsupported document format")
		return errorEnvelope(models.IntakeErrorUnsupportedFormat, err, "")
	}

	text, extractErr := p.extractor.ExtractText(req.FilePath)

	// The durable copy is attempted whatever the extraction outcome.
	stored, storeErr := p.storage.StoreCV(req.FilePath, req.Phone)
	var documentID *uuid.UUID
	if storeErr != nil {
		log.Warn("durable copy failed", zap.Error(storeErr))
	} else {
		documentID = p.recordDocument(ctx, req, ext, stored)
	}

	if extractErr != nil {
		log.Warn("text extraction failed", zap.Error(extractErr))
		p.recordEvaluation(ctx, req.Phone, documentID, nil, extractErr)
		return errorEnvelope(models.IntakeErrorExtraction, extractErr, publicURL(stored))
	}
	if storeErr != nil {
		p.recordEvaluation(ctx, req.Phone, nil, nil, storeErr)
		return errorEnvelope(models.IntakeErrorStorage, storeErr, "")
	}

	fields := p.extractFields(ctx, text)
	verdict := p.evaluateProfile(ctx, fields, text)
	p.recordEvaluation(ctx, req.Phone, documentID, &verdict, nil)

	info := &models.CVInfo{
		CVFields:      fields,
		FilePath:      stored.FilePath,
		CVURL:         stored.PublicURL,
		Filename:      stored.Filename,
		ProcessedAt:   p.now().Format(time.RFC3339),
		UserPhone:     req.Phone,
		UserName:      req.UserName,
		ProfileMatch:  verdict.ProfileMatch,
		AgentComments: verdict.Justification,
	}

	log.Info("cv processed",
		zap.String("candidate", info.FullName),
		zap.String("stored_as", stored.Filename),
	)

	return &models.IntakeEnvelope{
		Status:     models.IntakeStatusSuccess,
		Message:    "CV procesado exitosamente",
		CVInfo:     info,
		Preview:    truncateRunes(text, previewRunes, "..."),
		StoredCopy: stored.PublicURL,
	}
}

// extractFields falls back to sentinel values when the model output is unusable.
func (p *intakePipeline) extractFields(ctx context.Context, text string) models.CVFields {
	response, err := p.gemini.GenerateText(ctx, p.prompts.BuildCVExtractionPrompt(text), 0)
	if err != nil {
		p.log.Warn("field extraction call failed", zap.Error(err))
		return models.NotExtractedFields()
	}

	fields, err := parseCVFields(response)
	if err != nil {
		p.log.Warn("field extraction output unusable",
			zap.Error(err),
			zap.String("response", logger.TruncateForLog(response, 200)),
		)
		return models.NotExtractedFields()
	}
	return fields
}

// evaluateProfile fails closed: anything but a well-formed verdict is a rejection.
func (p *intakePipeline) evaluateProfile(ctx context.Context, fields models.CVFields, text string) models.ProfileVerdict {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return models.ProfileVerdict{Justification: evaluationFailedComment}
	}

	sample := truncateRunes(text, evaluationSampleRunes, "")
	prompt := p.prompts.BuildProfileEvaluationPrompt(string(fieldsJSON), sample, p.jobRequirements(ctx))

	response, err := p.gemini.GenerateText(ctx, prompt, 0)
	if err != nil {
		p.log.Warn("profile evaluation call failed", zap.Error(err))
		return models.ProfileVerdict{Justification: evaluationFailedComment}
	}

	var parsed struct {
		ProfileMatch  *bool  `json:"cumple_perfil"`
		Justification string `json:"comentarios"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil || parsed.ProfileMatch == nil {
		p.log.Warn("profile evaluation output unusable", zap.String("response", logger.TruncateForLog(response, 200)))
		return models.ProfileVerdict{Justification: evaluationFailedComment}
	}

	verdict := models.ProfileVerdict{
		ProfileMatch:  *parsed.ProfileMatch,
		Justification: strings.TrimSpace(parsed.Justification),
	}
	if verdict.Justification == "" {
		verdict.Justification = evaluationEmptyComment
	}
	return verdict
}

func (p *intakePipeline) jobRequirements(ctx context.Context) string {
	if p.requirements == nil {
		return ""
	}
	reqs, err := p.requirements.Requirements(ctx)
	if err != nil {
		p.log.Warn("requirements lookup failed, using built-in rubric", zap.Error(err))
		return ""
	}
	return reqs
}

func (p *intakePipeline) recordDocument(ctx context.Context, req IntakeRequest, ext string, stored *StoredFile) *uuid.UUID {
	if p.docRepo == nil {
		return nil
	}

	doc := &models.Document{
		ID:               uuid.New(),
		Phone:            req.Phone,
		Filename:         stored.Filename,
		OriginalFileName: filepath.Base(req.FilePath),
		FileType:         strings.TrimPrefix(ext, "."),
		FilePath:         stored.FilePath,
		PublicURL:        stored.PublicURL,
	}
	if err := p.docRepo.Create(ctx, doc); err != nil {
		p.log.Warn("failed to record document", zap.Error(err))
		return nil
	}
	return &doc.ID
}

func (p *intakePipeline) recordEvaluation(ctx context.Context, phone string, documentID *uuid.UUID, verdict *models.ProfileVerdict, failure error) {
	if p.evalRepo == nil {
		return
	}

	eval := &models.Evaluation{
		ID:           uuid.New(),
		Phone:        phone,
		JobTitle:     p.position,
		CVDocumentID: documentID,
		Status:       models.StatusCompleted,
	}
	if failure != nil {
		eval.Status = models.StatusFailed
		eval.ErrorMessage = failure.Error()
	}
	if verdict != nil {
		eval.ProfileMatch = verdict.ProfileMatch
		eval.Justification = verdict.Justification
	}

	if err := p.evalRepo.Create(ctx, eval); err != nil {
		p.log.Warn("failed to record evaluation", zap.Error(err))
	}
}

func errorEnvelope(kind string, err error, storedCopy string) *models.IntakeEnvelope {
	return &models.IntakeEnvelope{
		Status:     models.IntakeStatusError,
		Message:    fmt.Sprintf("Error procesando CV: %v", err),
		CVInfo:     nil,
		StoredCopy: storedCopy,
		ErrorKind:  kind,
	}
}

func publicURL(stored *StoredFile) string {
	if stored == nil {
		return ""
	}
	return stored.PublicURL
}

func parseCVFields(response string) (models.CVFields, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err != nil {
		return models.CVFields{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	if len(raw) == 0 {
		return models.CVFields{}, errors.New("empty JSON object")
	}

	return models.CVFields{
		FullName:        looseString(raw["nombre_completo"]),
		Email:           looseString(raw["email"]),
		Phone:           looseString(raw["telefono"]),
		ExperienceYears: looseString(raw["experiencia_años"]),
		CurrentRole:     looseString(raw["puesto_actual"]),
		Skills:          looseStrings(raw["habilidades"]),
		Education:       looseString(raw["educacion"]),
		Languages:       looseStrings(raw["idiomas"]),
		Location:        looseString(raw["ubicacion"]),
		Summary:         looseString(raw["resumen_profesional"]),
	}, nil
}

// looseString accepts whatever scalar the model chose for a text field.
func looseString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func looseStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := looseString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, item := range strings.Split(t, ",") {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

func truncateRunes(s string, limit int, suffix string) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + suffix
}
