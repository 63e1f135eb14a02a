package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
)

const DefaultAgentMaxIterations = 3

// AgentRequest is one conversation turn. Phone and DocumentPath are bound to the tools and
// are never taken from the message text.
type AgentRequest struct {
	Phone        string
	Message      string
	DocumentPath string
	UserName     string
	History      []models.Turn
}

type Agent interface {
	Respond(ctx context.Context, req AgentRequest) (string, error)
	ToolCount() int
}

type agent struct {
	gemini        GeminiService
	tools         ToolExecutor
	systemPrompt  string
	maxIterations int
	log           *zap.Logger
}

func NewAgent(gemini GeminiService, tools ToolExecutor, prompts *PromptBuilder, maxIterations int, log *zap.Logger) Agent {
	if maxIterations <= 0 {
		maxIterations = DefaultAgentMaxIterations
	}
	return &agent{
		gemini:        gemini,
		tools:         tools,
		systemPrompt:  prompts.BuildAgentSystemPrompt(),
		maxIterations: maxIterations,
		log:           logger.OrNop(log).Named("agent"),
	}
}

func (a *agent) ToolCount() int {
	n := 0
	for _, tool := range a.tools.Declarations() {
		n += len(tool.FunctionDeclarations)
	}
	return n
}

// Respond runs the model until it answers in text, executing requested tools in between.
// Errors wrap models.ErrAgentInvocationFailed.
func (a *agent) Respond(ctx context.Context, req AgentRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", fmt.Errorf("%w: empty message", models.ErrAgentInvocationFailed)
	}

	log := a.log.With(zap.String("phone", req.Phone))
	tc := ToolContext{
		Phone:        req.Phone,
		DocumentPath: req.DocumentPath,
		UserName:     req.UserName,
		History:      req.History,
	}

	contents := make([]*genai.Content, 0, len(req.History)+1+2*a.maxIterations)
	for _, turn := range req.History {
		var role genai.Role = genai.RoleUser
		if turn.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	tools := a.tools.Declarations()

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		resp, err := a.gemini.Converse(ctx, ConverseRequest{
			SystemInstruction: a.systemPrompt,
			Contents:          contents,
			Tools:             tools,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", models.ErrAgentInvocationFailed, err)
		}

		calls := ResponseFunctionCalls(resp)
		if len(calls) == 0 {
			text := ResponseText(resp)
			if text == "" {
				return "", fmt.Errorf("%w: empty response", models.ErrAgentInvocationFailed)
			}
			log.Debug("agent answered", zap.Int("iteration", iteration), zap.String("text", logger.TruncateForLog(text, 200)))
			return text, nil
		}

		contents = append(contents, resp.Candidates[0].Content)

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			result := a.runTool(ctx, tc, call)
			part := genai.NewPartFromFunctionResponse(call.Name, result)
			part.FunctionResponse.ID = call.ID
			parts = append(parts, part)
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	log.Warn("agent iteration limit reached", zap.Int("max_iterations", a.maxIterations))
	return "", fmt.Errorf("%w: stopped after %d iterations", models.ErrAgentInvocationFailed, a.maxIterations)
}

func (a *agent) runTool(ctx context.Context, tc ToolContext, call *genai.FunctionCall) map[string]any {
	cmd, err := ParseFunctionCall(call)
	if err != nil {
		a.log.Warn("rejected tool call", zap.String("tool", call.Name), zap.Error(err))
		return map[string]any{"status": "error", "message": err.Error()}
	}
	return a.tools.Execute(ctx, tc, cmd)
}
