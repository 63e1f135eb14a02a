package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/recruiter-assistant/internal/logger"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	Converse(ctx context.Context, req ConverseRequest) (*genai.GenerateContentResponse, error)
}

// ConverseRequest is one turn of a tool-calling conversation.
type ConverseRequest struct {
	SystemInstruction string
	Contents          []*genai.Content
	Tools             []*genai.Tool
	Temperature       float32
}

// modelsAPI is the part of genai.Models the service uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type geminiService struct {
	models     modelsAPI
	modelName  string
	embedModel string
	timeout    time.Duration
	log        *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, model, embedModel string, timeout time.Duration, log *zap.Logger) (GeminiService, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, model, embedModel, timeout, log), nil
}

func newGeminiService(models modelsAPI, model, embedModel string, timeout time.Duration, log *zap.Logger) *geminiService {
	if model = strings.TrimSpace(model); model == "" {
		model = "gemini-2.5-flash"
	}
	if embedModel = strings.TrimSpace(embedModel); embedModel == "" {
		embedModel = "text-embedding-004"
	}

	return &geminiService{
		models:     models,
		modelName:  model,
		embedModel: embedModel,
		timeout:    timeout,
		log:        logger.OrNop(log).Named("gemini"),
	}
}

const maxEmbeddingRunes = 40000

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Max ~10000 tokens for embedding.
	text = truncateRunes(text, maxEmbeddingRunes, "")

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	result, err := g.models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		g.log.Warn("generate content failed", zap.Error(err))
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := ResponseText(resp)
	if text == "" {
		return "", errors.New("no text content in response")
	}

	g.log.Debug("gemini response received", zap.String("text", logger.TruncateForLog(text, 200)))
	return text, nil
}

// Converse implements GeminiService.
func (g *geminiService) Converse(ctx context.Context, req ConverseRequest) (*genai.GenerateContentResponse, error) {
	if len(req.Contents) == 0 {
		return nil, errors.New("conversation must not be empty")
	}

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 2048,
		Tools:           req.Tools,
	}
	if strings.TrimSpace(req.SystemInstruction) != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.modelName, req.Contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, errors.New("no response generated (nil response)")
	}

	return resp, nil
}

func (g *geminiService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// ResponseText joins the text parts of every candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// ResponseFunctionCalls returns the function calls of the first candidate.
func ResponseFunctionCalls(resp *genai.GenerateContentResponse) []*genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return nil
	}

	var calls []*genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.FunctionCall != nil {
			calls = append(calls, part.FunctionCall)
		}
	}
	return calls
}
