package services

import (
	"sort"
	"strings"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

const DefaultHistoryWindow = 5

// FormatHistory turns raw gateway messages into at most window role-tagged turns, oldest first.
// The input may come in either order. The message currently being handled (currentID) is
// not history and is left out before the window is taken. Inside the window, empty bodies,
// missing bodies and bare document filenames are dropped.
func FormatHistory(messages []models.ChatMessage, currentID string, window int) []models.Turn {
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	chronological := make([]models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if currentID != "" && m.ID == currentID {
			continue
		}
		chronological = append(chronological, m)
	}
	sort.SliceStable(chronological, func(i, j int) bool {
		return chronological[i].Timestamp < chronological[j].Timestamp
	})

	if len(chronological) > window {
		chronological = chronological[len(chronological)-window:]
	}

	turns := make([]models.Turn, 0, len(chronological))
	for _, m := range chronological {
		if m.Body == nil {
			continue
		}
		body := strings.TrimSpace(*m.Body)
		if body == "" || isFilenameEcho(body) {
			continue
		}

		role := models.RoleUser
		if m.FromMe {
			role = models.RoleAssistant
		}
		turns = append(turns, models.Turn{Role: role, Text: body})
	}

	return turns
}

func isFilenameEcho(body string) bool {
	lower := strings.ToLower(body)
	for _, ext := range documentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
