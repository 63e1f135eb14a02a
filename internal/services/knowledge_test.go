package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

type fakeGemini struct {
	texts       []string
	textErr     error
	prompts     []string
	converse    []*genai.GenerateContentResponse
	requests    []ConverseRequest
	converseErr error
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.textErr != nil {
		return "", f.textErr
	}
	if len(f.texts) == 0 {
		return "", errors.New("unexpected call")
	}
	out := f.texts[0]
	f.texts = f.texts[1:]
	return out, nil
}

func (f *fakeGemini) Converse(ctx context.Context, req ConverseRequest) (*genai.GenerateContentResponse, error) {
	f.requests = append(f.requests, req)
	if f.converseErr != nil {
		return nil, f.converseErr
	}
	if len(f.converse) == 0 {
		return nil, errors.New("unexpected call")
	}
	out := f.converse[0]
	f.converse = f.converse[1:]
	return out, nil
}

type fakeQdrant struct {
	chunks  []KnowledgeChunk
	deleted []string
	results []SearchResult
	docType string
	limit   int
}

func (f *fakeQdrant) InitCollection(ctx context.Context) error { return nil }

func (f *fakeQdrant) UpsertChunk(ctx context.Context, chunk KnowledgeChunk, embedding []float32) error {
	f.chunks = append(f.chunks, chunk)
	return nil
}

func (f *fakeQdrant) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	f.docType = docType
	f.limit = limit
	return f.results, nil
}

func (f *fakeQdrant) DeleteSource(ctx context.Context, source string) error {
	f.deleted = append(f.deleted, source)
	return nil
}

func TestKnowledgeBaseIngest(t *testing.T) {
	q := &fakeQdrant{}
	kb := NewKnowledgeBase(&fakeGemini{}, q, NewTextChunker(), NewPromptBuilder("Asesor"), "job_profile", 8, nil)

	n, err := kb.Ingest(context.Background(), "perfil.pdf", "Requisitos\n\nSecundaria completa\n\n\n  Horario rotativo  ")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"perfil.pdf"}, q.deleted)
	require.Len(t, q.chunks, 1)
	assert.Equal(t, "job_profile", q.chunks[0].DocType)
	assert.Equal(t, "Requisitos\n\nSecundaria completa\n\nHorario rotativo", q.chunks[0].Text)
}

func TestKnowledgeChunkPointIDIsStable(t *testing.T) {
	a := KnowledgeChunk{Source: "perfil.pdf", Index: 3}
	b := KnowledgeChunk{Source: "perfil.pdf", Index: 3, Text: "otro"}
	c := KnowledgeChunk{Source: "perfil.pdf", Index: 4}

	assert.Equal(t, a.PointID(), b.PointID())
	assert.NotEqual(t, a.PointID(), c.PointID())
}

func TestKnowledgeBaseAsk(t *testing.T) {
	q := &fakeQdrant{results: []SearchResult{{Text: "El horario es de lunes a sábado.", Score: 0.9}}}
	g := &fakeGemini{texts: []string{"Trabajamos de lunes a sábado 😊"}}
	kb := NewKnowledgeBase(g, q, NewTextChunker(), NewPromptBuilder("Asesor"), "job_profile", 5, nil)

	history := []models.Turn{{Role: models.RoleAssistant, Text: "¡Hola!"}}
	answer, err := kb.Ask(context.Background(), history, "¿Cuál es el horario?")
	require.NoError(t, err)
	assert.Equal(t, "Trabajamos de lunes a sábado 😊", answer)
	assert.Equal(t, "job_profile", q.docType)
	assert.Equal(t, 5, q.limit)

	require.Len(t, g.prompts, 1)
	assert.Contains(t, g.prompts[0], "El horario es de lunes a sábado.")
	assert.Contains(t, g.prompts[0], "Asistente: ¡Hola!")
	assert.True(t, strings.HasSuffix(g.prompts[0], "Candidato: ¿Cuál es el horario?"))
}

func TestKnowledgeBaseRequirements(t *testing.T) {
	q := &fakeQdrant{}
	kb := NewKnowledgeBase(&fakeGemini{}, q, NewTextChunker(), NewPromptBuilder("Asesor"), "job_profile", 8, nil)

	reqs, err := kb.Requirements(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reqs)

	q.results = []SearchResult{{Text: "Secundaria completa", Score: 0.8}}
	reqs, err = kb.Requirements(context.Background())
	require.NoError(t, err)
	assert.Contains(t, reqs, "Secundaria completa")
	assert.Equal(t, 3, q.limit)
}
