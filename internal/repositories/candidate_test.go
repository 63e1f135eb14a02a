package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestRepo(t *testing.T) (*candidateRepository, Worksheet) {
	t.Helper()
	sheet := NewMemoryWorksheet()
	repo := NewCandidateRepository(sheet, CandidateDefaults{
		Position:  "Asistente Administrativo",
		Source:    "Orgánico",
		Evaluator: "Agente IA",
	}, time.Second).(*candidateRepository)
	repo.now = func() time.Time { return fixedNow }
	require.NoError(t, repo.EnsureHeaders(context.Background()))
	return repo, sheet
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestEnsureHeadersIsIdempotent(t *testing.T) {
	repo, sheet := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.EnsureHeaders(ctx))

	ids, err := sheet.ColumnValues(ctx, colID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID"}, ids)

	header, err := sheet.RowValues(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, header, 15)
	assert.Equal(t, CandidateHeaders, header)
}

func TestCreateCandidate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewCandidate{
		FullName: "Ana Pérez",
		Phone:    "51987654321",
		Email:    "ana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "CAND_51987654321_20250314092653", id)

	got, err := repo.FindByPhone(ctx, "51987654321")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Ana Pérez", got.FullName)
	assert.Equal(t, "2025-03-14 09:26:53", got.ContactedAt)
	assert.Equal(t, "Asistente Administrativo", got.RequestedPosition)
	assert.Equal(t, "Orgánico", got.Source)
	assert.Equal(t, "Agente IA", got.Evaluator)
	assert.Equal(t, models.PhaseInitial, got.Phase)
	assert.Empty(t, got.EvaluatedAt)
	assert.False(t, got.CVReceived)
	assert.False(t, got.HasProcessedCV())
}

func TestCreateWithCVLinkMarksReceived(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, models.NewCandidate{
		Phone:  "51911111111",
		CVLink: "/cvs/CV_51911111111_20250314_092653.pdf",
		Phase:  models.PhaseCVEvaluated,
	})
	require.NoError(t, err)

	got, err := repo.FindByPhone(ctx, "51911111111")
	require.NoError(t, err)
	assert.True(t, got.CVReceived)
	assert.True(t, got.HasProcessedCV())
	assert.Equal(t, "2025-03-14 09:26:53", got.EvaluatedAt)
}

func TestCreateDuplicatePhone(t *testing.T) {
	repo, sheet := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, models.NewCandidate{Phone: "51987654321"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, models.NewCandidate{Phone: "51987654321", FullName: "Otro"})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	phones, err := sheet.ColumnValues(ctx, colPhone)
	require.NoError(t, err)
	assert.Len(t, phones, 2)
}

func TestCreateRequiresPhone(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Create(context.Background(), models.NewCandidate{FullName: "Sin teléfono"})
	assert.Error(t, err)
}

func TestFindByPhoneNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.FindByPhone(context.Background(), "51900000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFindByPhoneSkipsHeader(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.FindByPhone(context.Background(), "Número de WhatsApp")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateCVLinkImpliesReceived(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewCandidate{Phone: "51987654321"})
	require.NoError(t, err)

	err = repo.Update(ctx, id, models.CandidatePatch{
		CVLink:     strPtr("/cvs/CV_51987654321.pdf"),
		CVReceived: boolPtr(false),
	})
	require.NoError(t, err)

	got, err := repo.FindByPhone(ctx, "51987654321")
	require.NoError(t, err)
	assert.Equal(t, "/cvs/CV_51987654321.pdf", got.CVLink)
	assert.True(t, got.CVReceived)
}

func TestUpdateIsIdempotent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewCandidate{Phone: "51987654321"})
	require.NoError(t, err)

	patch := models.CandidatePatch{Comments: strPtr("Perfil sólido")}
	require.NoError(t, repo.Update(ctx, id, patch))
	first, err := repo.FindByPhone(ctx, "51987654321")
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, id, patch))
	second, err := repo.FindByPhone(ctx, "51987654321")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Perfil sólido", second.Comments)
}

func TestUpdateEvaluatorStampsEvaluationDate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewCandidate{Phone: "51987654321"})
	require.NoError(t, err)

	repo.now = func() time.Time { return fixedNow.Add(time.Hour) }
	phase := models.PhaseCVEvaluated
	require.NoError(t, repo.Update(ctx, id, models.CandidatePatch{
		Phase:        &phase,
		ProfileMatch: boolPtr(true),
		Evaluator:    strPtr("Agente IA"),
	}))

	got, err := repo.FindByPhone(ctx, "51987654321")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCVEvaluated, got.Phase)
	assert.True(t, got.ProfileMatch)
	assert.Equal(t, "2025-03-14 10:26:53", got.EvaluatedAt)
}

func TestUpdatePhaseRegression(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, models.NewCandidate{Phone: "51987654321", Phase: models.PhaseCVEvaluated})
	require.NoError(t, err)

	back := models.PhaseInitial
	err = repo.Update(ctx, id, models.CandidatePatch{Phase: &back})
	assert.ErrorIs(t, err, models.ErrInvalidPhaseTransition)

	unknown := models.ProcessPhase("Entrevista")
	err = repo.Update(ctx, id, models.CandidatePatch{Phase: &unknown})
	assert.ErrorIs(t, err, models.ErrInvalidPhaseTransition)

	got, err := repo.FindByPhone(ctx, "51987654321")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseCVEvaluated, got.Phase)
}

func TestUpdateUnknownID(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Update(context.Background(), "CAND_000_20250101000000", models.CandidatePatch{Comments: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

type failingWorksheet struct {
	Worksheet
}

func (failingWorksheet) ColumnValues(context.Context, int) ([]string, error) {
	return nil, errors.New("quota exceeded")
}

func TestStoreUnavailable(t *testing.T) {
	repo := NewCandidateRepository(failingWorksheet{}, CandidateDefaults{}, time.Second)
	ctx := context.Background()

	_, err := repo.FindByPhone(ctx, "51987654321")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	_, err = repo.Create(ctx, models.NewCandidate{Phone: "51987654321"})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	err = repo.Update(ctx, "CAND_1", models.CandidatePatch{Comments: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestApplyCellsGrowsRow(t *testing.T) {
	out := applyCells([]string{"a"}, map[int]string{3: "c"})
	assert.Equal(t, []string{"a", "", "c"}, out)
}
