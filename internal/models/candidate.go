package models

import "strings"

type ProcessPhase string

const (
	PhaseInitial     ProcessPhase = "Inicial"
	PhaseCVEvaluated ProcessPhase = "CV Evaluado"
)

// Rank orders phases; a phase may only move to an equal or higher rank.
// Unknown phases rank -1.
func (p ProcessPhase) Rank() int {
	switch p {
	case PhaseInitial:
		return 0
	case PhaseCVEvaluated:
		return 1
	default:
		return -1
	}
}

const (
	Yes = "Sí"
	No  = "No"
)

// YesNo renders a flag the way the candidate sheet stores it.
func YesNo(b bool) string {
	if b {
		return Yes
	}
	return No
}

// ParseYesNo accepts the sheet spelling plus a few common variants.
func ParseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sí", "si", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// Candidate is one row of the candidate sheet.
type Candidate struct {
	ID                string       `json:"id"`
	ContactedAt       string       `json:"fecha_contacto"`
	FullName          string       `json:"nombre_completo"`
	Phone             string       `json:"telefono"`
	Email             string       `json:"email"`
	CVReceived        bool         `json:"cv_recibido"`
	CVLink            string       `json:"cv_link"`
	RequestedPosition string       `json:"puesto_solicitado"`
	Source            string       `json:"fuente"`
	Comments          string       `json:"comentarios"`
	ProfileMatch      bool         `json:"cumple_perfil"`
	Recommended       bool         `json:"recomendado"`
	Phase             ProcessPhase `json:"fase_proceso"`
	EvaluatedAt       string       `json:"fecha_evaluacion"`
	Evaluator         string       `json:"evaluador"`
}

// HasProcessedCV is the only predicate for CV status: a stored CV link or the received flag.
func (c *Candidate) HasProcessedCV() bool {
	if c == nil {
		return false
	}
	return strings.TrimSpace(c.CVLink) != "" || c.CVReceived
}

// NewCandidate is the create payload. Phone is required; empty fields take sheet defaults.
type NewCandidate struct {
	FullName          string       `json:"nombre_completo"`
	Phone             string       `json:"phone"`
	Email             string       `json:"email"`
	CVReceived        bool         `json:"cv_received"`
	CVLink            string       `json:"cv_link"`
	RequestedPosition string       `json:"puesto_solicitado"`
	Source            string       `json:"fuente"`
	Comments          string       `json:"comentarios"`
	ProfileMatch      bool         `json:"cumple_perfil"`
	Recommended       bool         `json:"recomendado"`
	Phase             ProcessPhase `json:"fase_proceso"`
	Evaluator         string       `json:"evaluador"`
}

// CandidatePatch is a partial update; nil fields are left untouched.
type CandidatePatch struct {
	FullName          *string       `json:"nombre_completo,omitempty"`
	Email             *string       `json:"email,omitempty"`
	CVReceived        *bool         `json:"cv_received,omitempty"`
	CVLink            *string       `json:"cv_link,omitempty"`
	RequestedPosition *string       `json:"puesto_solicitado,omitempty"`
	Comments          *string       `json:"comentarios,omitempty"`
	ProfileMatch      *bool         `json:"cumple_perfil,omitempty"`
	Recommended       *bool         `json:"recomendado,omitempty"`
	Phase             *ProcessPhase `json:"fase_proceso,omitempty"`
	Evaluator         *string       `json:"evaluador,omitempty"`
}

func (p CandidatePatch) IsEmpty() bool {
	return p == CandidatePatch{}
}
