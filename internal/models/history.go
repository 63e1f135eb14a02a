package models

// ChatMessage is one entry of the gateway chat history. Body is nil when the gateway
// omitted it.
type ChatMessage struct {
	ID        string  `json:"id"`
	Body      *string `json:"body"`
	FromMe    bool    `json:"fromMe"`
	Timestamp int64   `json:"timestamp"`
	HasMedia  bool    `json:"hasMedia"`
}

type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is a role-tagged history entry handed to the agent.
type Turn struct {
	Role TurnRole `json:"role"`
	Text string   `json:"text"`
}
