package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
)

// KnowledgeBase answers questions about the position from an indexed document corpus.
type KnowledgeBase interface {
	Ingest(ctx context.Context, source, text string) (int, error)
	Ask(ctx context.Context, history []models.Turn, question string) (string, error)
	RequirementsSource
}

type knowledgeBase struct {
	gemini  GeminiService
	qdrant  QdrantService
	chunker TextChunker
	prompts *PromptBuilder
	docType string
	topK    int
	log     *zap.Logger
}

func NewKnowledgeBase(gemini GeminiService, qdrant QdrantService, chunker TextChunker, prompts *PromptBuilder, docType string, topK int, log *zap.Logger) KnowledgeBase {
	if topK <= 0 {
		topK = 8
	}
	return &knowledgeBase{
		gemini:  gemini,
		qdrant:  qdrant,
		chunker: chunker,
		prompts: prompts,
		docType: docType,
		topK:    topK,
		log:     logger.OrNop(log).Named("knowledge"),
	}
}

// Ingest replaces every chunk previously stored for source.
func (kb *knowledgeBase) Ingest(ctx context.Context, source, text string) (int, error) {
	chunks := kb.chunker.ChunkText(CleanParagraphs(text), DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no content to ingest from %s", source)
	}

	if err := kb.qdrant.DeleteSource(ctx, source); err != nil {
		return 0, err
	}

	for i, chunk := range chunks {
		embedding, err := kb.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("failed to embed chunk %d of %s: %w", i, source, err)
		}

		kc := KnowledgeChunk{Source: source, DocType: kb.docType, Index: i, Text: chunk}
		if err := kb.qdrant.UpsertChunk(ctx, kc, embedding); err != nil {
			return i, fmt.Errorf("failed to store chunk %d of %s: %w", i, source, err)
		}
	}

	kb.log.Info("document ingested", zap.String("source", source), zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// Ask implements KnowledgeBase.
func (kb *knowledgeBase) Ask(ctx context.Context, history []models.Turn, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question must not be empty")
	}

	embedding, err := kb.gemini.GenerateEmbedding(ctx, question)
	if err != nil {
		return "", err
	}

	results, err := kb.qdrant.SearchSimilar(ctx, embedding, kb.docType, kb.topK)
	if err != nil {
		return "", err
	}
	kb.log.Debug("context retrieved", zap.Int("results", len(results)))

	var prompt strings.Builder
	prompt.WriteString(kb.prompts.BuildKnowledgeBasePrompt(FormatRAGContext(results)))
	prompt.WriteString("\n\n")
	for _, turn := range history {
		prompt.WriteString(turnLabel(turn.Role))
		prompt.WriteString(": ")
		prompt.WriteString(turn.Text)
		prompt.WriteString("\n")
	}
	prompt.WriteString("Candidato: ")
	prompt.WriteString(question)

	return kb.gemini.GenerateText(ctx, prompt.String(), 0.2)
}

// Requirements returns the indexed passages about the position's requirements, or "" when
// nothing is indexed.
func (kb *knowledgeBase) Requirements(ctx context.Context) (string, error) {
	embedding, err := kb.gemini.GenerateEmbedding(ctx, kb.prompts.BuildRetrievalQuery("requirements", ""))
	if err != nil {
		return "", err
	}

	results, err := kb.qdrant.SearchSimilar(ctx, embedding, kb.docType, 3)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return FormatRAGContext(results), nil
}

func turnLabel(role models.TurnRole) string {
	if role == models.RoleAssistant {
		return "Asistente"
	}
	return "Candidato"
}

// CleanParagraphs trims each line but keeps blank-line paragraph breaks for the chunker.
func CleanParagraphs(text string) string {
	paras := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	kept := paras[:0]
	for _, p := range paras {
		if p = CleanText(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
