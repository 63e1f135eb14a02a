package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "  hola  ", 10, "hola"},
		{"truncated", "abcdefgh", 3, "abc..."},
		{"multibyte", "ñandúes", 4, "ñand..."},
		{"zero limit", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateForLog(tt.in, tt.limit))
		})
	}
}

func TestChatFieldsSkipsEmptyValues(t *testing.T) {
	fields := ChatFields("51999@c.us", "  ")
	if assert.Len(t, fields, 1) {
		assert.Equal(t, "chat_id", fields[0].Key)
		assert.Equal(t, "51999@c.us", fields[0].String)
	}
	assert.Empty(t, ChatFields("", ""))
	assert.NotNil(t, OrNop(nil))
}
