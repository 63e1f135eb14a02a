package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/repositories"
)

type fakeIntake struct {
	envelope *models.IntakeEnvelope
	requests []IntakeRequest
}

func (f *fakeIntake) Process(ctx context.Context, req IntakeRequest) *models.IntakeEnvelope {
	f.requests = append(f.requests, req)
	return f.envelope
}

type fakeKnowledge struct {
	answer    string
	questions []string
}

func (f *fakeKnowledge) Ingest(ctx context.Context, source, text string) (int, error) { return 0, nil }

func (f *fakeKnowledge) Ask(ctx context.Context, history []models.Turn, question string) (string, error) {
	f.questions = append(f.questions, question)
	return f.answer, nil
}

func (f *fakeKnowledge) Requirements(ctx context.Context) (string, error) { return "", nil }

type toolFixture struct {
	exec      ToolExecutor
	repo      repositories.CandidateRepository
	intake    *fakeIntake
	knowledge *fakeKnowledge
}

func newToolFixture(t *testing.T) *toolFixture {
	t.Helper()
	repo := newCandidateRepo(t)
	intake := &fakeIntake{envelope: &models.IntakeEnvelope{Status: models.IntakeStatusSuccess, CVInfo: sampleCVInfo()}}
	knowledge := &fakeKnowledge{answer: "De lunes a sábado"}
	exec := NewToolExecutor(repo, intake, NewCandidateRegistrar(repo, "Clara (IA)", nil), knowledge, nil)
	return &toolFixture{exec: exec, repo: repo, intake: intake, knowledge: knowledge}
}

func TestParseFunctionCall(t *testing.T) {
	cmd, err := ParseFunctionCall(&genai.FunctionCall{Name: ToolCreateCandidate, Args: map[string]any{
		"nombre_completo": " Ana ",
		"phone":           "51900000000",
	}})
	require.NoError(t, err)
	assert.Equal(t, CreateCandidate{FullName: "Ana"}, cmd)

	cmd, err = ParseFunctionCall(&genai.FunctionCall{Name: ToolUpdateCandidate, Args: map[string]any{"email": "a@b.c"}})
	require.NoError(t, err)
	update := cmd.(UpdateCandidate)
	require.NotNil(t, update.Email)
	assert.Equal(t, "a@b.c", *update.Email)
	assert.Nil(t, update.FullName)

	_, err = ParseFunctionCall(&genai.FunctionCall{Name: "delete_everything"})
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = ParseFunctionCall(&genai.FunctionCall{Name: ToolAskKnowledgeBase})
	assert.Error(t, err)
}

func TestLookupReportsFreshCVState(t *testing.T) {
	f := newToolFixture(t)
	ctx := context.Background()
	tc := ToolContext{Phone: "51987654321"}

	out := f.exec.Execute(ctx, tc, LookupCandidate{})
	assert.Equal(t, "not_found", out["status"])
	assert.Equal(t, false, out["cv_procesado"])

	id, err := f.repo.Create(ctx, models.NewCandidate{Phone: "51987654321"})
	require.NoError(t, err)
	out = f.exec.Execute(ctx, tc, LookupCandidate{})
	assert.Equal(t, "found", out["status"])
	assert.Equal(t, false, out["cv_procesado"])

	link := "/app/cv_storage/x.pdf"
	require.NoError(t, f.repo.Update(ctx, id, models.CandidatePatch{CVLink: &link}))
	out = f.exec.Execute(ctx, tc, LookupCandidate{})
	assert.Equal(t, true, out["cv_procesado"])
}

func TestCreateUsesBoundPhone(t *testing.T) {
	f := newToolFixture(t)
	ctx := context.Background()

	out := f.exec.Execute(ctx, ToolContext{Phone: "51987654321"}, CreateCandidate{FullName: "Ana"})
	assert.Equal(t, "created", out["status"])

	out = f.exec.Execute(ctx, ToolContext{Phone: "51987654321"}, CreateCandidate{FullName: "Ana"})
	assert.Equal(t, "already_exists", out["status"])

	got, err := f.repo.FindByPhone(ctx, "51987654321")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.FullName)
}

func TestUpdateUnknownCandidate(t *testing.T) {
	f := newToolFixture(t)
	comment := "x"

	out := f.exec.Execute(context.Background(), ToolContext{Phone: "51987654321"}, UpdateCandidate{Comments: &comment})
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "El candidato no está registrado.", out["message"])
}

func TestProcessCVRequiresAttachedDocument(t *testing.T) {
	f := newToolFixture(t)

	out := f.exec.Execute(context.Background(), ToolContext{Phone: "51987654321"}, IntakeDocument{})
	assert.Equal(t, "error", out["status"])
	assert.Empty(t, f.intake.requests)
}

func TestProcessCVRegistersCandidate(t *testing.T) {
	f := newToolFixture(t)

	out := f.exec.Execute(context.Background(), ToolContext{Phone: "51987654321", DocumentPath: "/tmp/cv.pdf"}, IntakeDocument{})
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, string(RegistrationCreated), out["accion"])
	assert.NotContains(t, out, "cumple_perfil")

	require.Len(t, f.intake.requests, 1)
	assert.Equal(t, IntakeRequest{FilePath: "/tmp/cv.pdf", Phone: "51987654321"}, f.intake.requests[0])
}

func TestAskKnowledgeBaseTool(t *testing.T) {
	f := newToolFixture(t)

	out := f.exec.Execute(context.Background(), ToolContext{Phone: "51987654321"}, AskKnowledgeBase{Question: "¿Horario?"})
	assert.Equal(t, "De lunes a sábado", out["respuesta"])
	assert.Equal(t, []string{"¿Horario?"}, f.knowledge.questions)
}

func TestDeclarationsCoverEveryTool(t *testing.T) {
	f := newToolFixture(t)

	var names []string
	for _, tool := range f.exec.Declarations() {
		for _, decl := range tool.FunctionDeclarations {
			names = append(names, decl.Name)
		}
	}
	assert.ElementsMatch(t, []string{ToolLookupCandidate, ToolCreateCandidate, ToolUpdateCandidate, ToolProcessCV, ToolAskKnowledgeBase}, names)
}
