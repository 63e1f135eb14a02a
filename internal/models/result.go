package models

// StatusResponse is the JSON body of every webhook and admin response.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SendMessageRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type AgentTestResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	AgentResponse string `json:"agent_response"`
	ToolsCount    int    `json:"tools_count"`
}

type CandidateResponse struct {
	Status      string       `json:"status"`
	CVProcessed bool         `json:"cv_processed"`
	Candidate   *Candidate   `json:"candidate,omitempty"`
	Documents   []Document   `json:"documents"`
	Evaluations []Evaluation `json:"evaluations"`
}

type EvaluationResponse struct {
	Status     string      `json:"status"`
	Evaluation *Evaluation `json:"evaluation"`
	CVDocument *Document   `json:"cv_document,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Gateway string `json:"gateway,omitempty"`
}
