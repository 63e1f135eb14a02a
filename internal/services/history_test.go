package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

func msg(id string, ts int64, body string, fromMe bool) models.ChatMessage {
	return models.ChatMessage{ID: id, Timestamp: ts, Body: &body, FromMe: fromMe}
}

func TestFormatHistoryKeepsLastFive(t *testing.T) {
	var messages []models.ChatMessage
	for i := 1; i <= 7; i++ {
		messages = append(messages, msg(fmt.Sprintf("m%d", i), int64(i), fmt.Sprintf("mensaje %d", i), i%2 == 0))
	}

	turns := FormatHistory(messages, "", 5)

	require.Len(t, turns, 5)
	assert.Equal(t, "mensaje 3", turns[0].Text)
	assert.Equal(t, "mensaje 7", turns[4].Text)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, models.RoleAssistant, turns[1].Role)
}

func TestFormatHistoryNormalisesNewestFirst(t *testing.T) {
	messages := []models.ChatMessage{
		msg("c", 30, "tercero", false),
		msg("b", 20, "segundo", true),
		msg("a", 10, "primero", false),
	}

	turns := FormatHistory(messages, "", 5)

	require.Len(t, turns, 3)
	assert.Equal(t, []string{"primero", "segundo", "tercero"}, []string{turns[0].Text, turns[1].Text, turns[2].Text})
}

func TestFormatHistoryDropsFilenamesAndEmpty(t *testing.T) {
	messages := []models.ChatMessage{
		msg("a", 1, "cv_123.pdf", false),
		msg("b", 2, "   ", false),
		{ID: "c", Timestamp: 3},
		msg("d", 4, "Hola, quiero postular", false),
		msg("e", 5, "Mi_CV.DOCX", false),
	}

	turns := FormatHistory(messages, "", 5)

	require.Len(t, turns, 1)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Text: "Hola, quiero postular"}, turns[0])
}

func TestFormatHistoryExcludesCurrentMessage(t *testing.T) {
	messages := []models.ChatMessage{
		msg("a", 1, "hola", false),
		msg("b", 2, "¡Hola! ¿En qué puedo ayudarte?", true),
		msg("current", 3, "¿Cuál es el horario?", false),
	}

	turns := FormatHistory(messages, "current", 5)

	require.Len(t, turns, 2)
	assert.Equal(t, "¡Hola! ¿En qué puedo ayudarte?", turns[1].Text)
}

func TestFormatHistoryEmpty(t *testing.T) {
	assert.Empty(t, FormatHistory(nil, "", 5))
}
