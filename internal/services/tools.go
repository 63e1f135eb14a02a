package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/repositories"
)

const (
	ToolLookupCandidate  = "lookup_candidate"
	ToolCreateCandidate  = "create_candidate"
	ToolUpdateCandidate  = "update_candidate"
	ToolProcessCV        = "process_cv"
	ToolAskKnowledgeBase = "ask_knowledge_base"
)

var ErrUnknownTool = errors.New("unknown tool")

// Command is one tool invocation requested by the agent. Only the types in this file
// implement it.
type Command interface {
	ToolName() string
	command()
}

type LookupCandidate struct{}

type CreateCandidate struct {
	FullName          string
	Email             string
	RequestedPosition string
	Comments          string
}

type UpdateCandidate struct {
	FullName          *string
	Email             *string
	RequestedPosition *string
	Comments          *string
}

// IntakeDocument processes the document attached to the current message.
type IntakeDocument struct{}

type AskKnowledgeBase struct {
	Question string
}

func (LookupCandidate) ToolName() string  { return ToolLookupCandidate }
func (CreateCandidate) ToolName() string  { return ToolCreateCandidate }
func (UpdateCandidate) ToolName() string  { return ToolUpdateCandidate }
func (IntakeDocument) ToolName() string   { return ToolProcessCV }
func (AskKnowledgeBase) ToolName() string { return ToolAskKnowledgeBase }

func (LookupCandidate) command()  {}
func (CreateCandidate) command()  {}
func (UpdateCandidate) command()  {}
func (IntakeDocument) command()   {}
func (AskKnowledgeBase) command() {}

// ParseFunctionCall maps a model function call onto a Command. Arguments the model is not
// allowed to set, such as the phone, are ignored.
func ParseFunctionCall(call *genai.FunctionCall) (Command, error) {
	if call == nil {
		return nil, fmt.Errorf("%w: empty call", ErrUnknownTool)
	}

	args := call.Args
	switch call.Name {
	case ToolLookupCandidate:
		return LookupCandidate{}, nil
	case ToolCreateCandidate:
		return CreateCandidate{
			FullName:          stringArg(args, "nombre_completo"),
			Email:             stringArg(args, "email"),
			RequestedPosition: stringArg(args, "puesto_solicitado"),
			Comments:          stringArg(args, "comentarios"),
		}, nil
	case ToolUpdateCandidate:
		return UpdateCandidate{
			FullName:          optionalArg(args, "nombre_completo"),
			Email:             optionalArg(args, "email"),
			RequestedPosition: optionalArg(args, "puesto_solicitado"),
			Comments:          optionalArg(args, "comentarios"),
		}, nil
	case ToolProcessCV:
		return IntakeDocument{}, nil
	case ToolAskKnowledgeBase:
		question := stringArg(args, "pregunta")
		if question == "" {
			return nil, errors.New("ask_knowledge_base requires pregunta")
		}
		return AskKnowledgeBase{Question: question}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func optionalArg(args map[string]any, key string) *string {
	v, ok := args[key].(string)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

// ToolContext carries what the tools need from the typed request, never from message text.
type ToolContext struct {
	Phone        string
	DocumentPath string
	UserName     string
	History      []models.Turn
}

type ToolExecutor interface {
	Declarations() []*genai.Tool
	Execute(ctx context.Context, tc ToolContext, cmd Command) map[string]any
}

type toolExecutor struct {
	candidates repositories.CandidateRepository
	intake     IntakePipeline
	registrar  CandidateRegistrar
	knowledge  KnowledgeBase
	log        *zap.Logger
}

func NewToolExecutor(
	candidates repositories.CandidateRepository,
	intake IntakePipeline,
	registrar CandidateRegistrar,
	knowledge KnowledgeBase,
	log *zap.Logger,
) ToolExecutor {
	return &toolExecutor{
		candidates: candidates,
		intake:     intake,
		registrar:  registrar,
		knowledge:  knowledge,
		log:        logger.OrNop(log).Named("tools"),
	}
}

// Execute runs cmd and reports the outcome as a function response payload. Failures are
// reported in the payload, never returned.
func (e *toolExecutor) Execute(ctx context.Context, tc ToolContext, cmd Command) map[string]any {
	log := e.log.With(zap.String("tool", cmd.ToolName()), zap.String("phone", tc.Phone))
	log.Debug("executing tool")

	out := map[string]any{}
	var err error
	switch c := cmd.(type) {
	case LookupCandidate:
		out, err = e.lookup(ctx, tc)
	case CreateCandidate:
		out, err = e.create(ctx, tc, c)
	case UpdateCandidate:
		out, err = e.update(ctx, tc, c)
	case IntakeDocument:
		out, err = e.processCV(ctx, tc)
	case AskKnowledgeBase:
		out, err = e.ask(ctx, tc, c)
	}

	if err != nil {
		log.Warn("tool failed", zap.Error(err))
		return map[string]any{"status": "error", "message": toolErrorMessage(err)}
	}
	return out
}

func (e *toolExecutor) lookup(ctx context.Context, tc ToolContext) (map[string]any, error) {
	candidate, err := e.candidates.FindByPhone(ctx, tc.Phone)
	if errors.Is(err, models.ErrNotFound) {
		return map[string]any{"status": "not_found", "cv_procesado": false}, nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status":       "found",
		"id":           candidate.ID,
		"cv_procesado": candidate.HasProcessedCV(),
		"candidate": map[string]any{
			"nombre_completo":   candidate.FullName,
			"email":             candidate.Email,
			"cv_link":           candidate.CVLink,
			"cv_recibido":       models.YesNo(candidate.CVReceived),
			"puesto_solicitado": candidate.RequestedPosition,
			"fase_proceso":      string(candidate.Phase),
		},
	}, nil
}

func (e *toolExecutor) create(ctx context.Context, tc ToolContext, c CreateCandidate) (map[string]any, error) {
	id, err := e.candidates.Create(ctx, models.NewCandidate{
		FullName:          c.FullName,
		Phone:             tc.Phone,
		Email:             c.Email,
		RequestedPosition: c.RequestedPosition,
		Comments:          c.Comments,
	})
	if errors.Is(err, models.ErrAlreadyExists) {
		return map[string]any{"status": "already_exists"}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": "created", "id": id}, nil
}

func (e *toolExecutor) update(ctx context.Context, tc ToolContext, c UpdateCandidate) (map[string]any, error) {
	candidate, err := e.candidates.FindByPhone(ctx, tc.Phone)
	if err != nil {
		return nil, err
	}

	patch := models.CandidatePatch{
		FullName:          c.FullName,
		Email:             c.Email,
		RequestedPosition: c.RequestedPosition,
		Comments:          c.Comments,
	}
	if err := e.candidates.Update(ctx, candidate.ID, patch); err != nil {
		return nil, err
	}
	return map[string]any{"status": "updated", "id": candidate.ID}, nil
}

func (e *toolExecutor) processCV(ctx context.Context, tc ToolContext) (map[string]any, error) {
	if tc.DocumentPath == "" {
		return map[string]any{
			"status":  "error",
			"message": "El mensaje actual no trae ningún documento; pide al candidato que envíe su CV en PDF o Word.",
		}, nil
	}

	env := e.intake.Process(ctx, IntakeRequest{FilePath: tc.DocumentPath, Phone: tc.Phone, UserName: tc.UserName})
	if !env.OK() {
		return map[string]any{"status": "error", "message": env.Message}, nil
	}

	res, err := e.registrar.Register(ctx, tc.Phone, env.CVInfo)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"status":       "success",
		"id":           res.CandidateID,
		"accion":       string(res.Action),
		"nombre":       res.Name,
		"confirmacion": ConfirmationMessage(res),
	}, nil
}

func (e *toolExecutor) ask(ctx context.Context, tc ToolContext, c AskKnowledgeBase) (map[string]any, error) {
	answer, err := e.knowledge.Ask(ctx, tc.History, c.Question)
	if err != nil {
		return nil, err
	}
	return map[string]any{"status": "success", "respuesta": answer}, nil
}

func toolErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrStoreUnavailable):
		return "El registro de candidatos no está disponible en este momento."
	case errors.Is(err, models.ErrNotFound):
		return "El candidato no está registrado."
	case errors.Is(err, models.ErrInvalidPhaseTransition):
		return "Cambio de fase no permitido."
	default:
		return "No se pudo completar la operación."
	}
}

// Declarations implements ToolExecutor.
func (e *toolExecutor) Declarations() []*genai.Tool {
	candidateFields := map[string]*genai.Schema{
		"nombre_completo":   {Type: genai.TypeString, Description: "Nombre completo del candidato"},
		"email":             {Type: genai.TypeString, Description: "Correo electrónico"},
		"puesto_solicitado": {Type: genai.TypeString, Description: "Puesto al que postula"},
		"comentarios":       {Type: genai.TypeString, Description: "Comentarios del agente"},
	}

	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolLookupCandidate,
				Description: "Consulta el registro del candidato de esta conversación. Devuelve cv_procesado.",
			},
			{
				Name:        ToolCreateCandidate,
				Description: "Registra al candidato de esta conversación si todavía no existe.",
				Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: candidateFields},
			},
			{
				Name:        ToolUpdateCandidate,
				Description: "Actualiza datos de contacto o comentarios del candidato de esta conversación.",
				Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: candidateFields},
			},
			{
				Name:        ToolProcessCV,
				Description: "Procesa el CV adjunto al mensaje actual y registra al candidato.",
			},
			{
				Name:        ToolAskKnowledgeBase,
				Description: "Responde preguntas sobre el puesto: requisitos, horarios, sueldo, beneficios, ubicación.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"pregunta": {Type: genai.TypeString, Description: "La pregunta del candidato"},
					},
					Required: []string{"pregunta"},
				},
			},
		},
	}}
}
