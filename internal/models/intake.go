package models

const (
	IntakeStatusSuccess = "success"
	IntakeStatusError   = "error"

	IntakeErrorUnsupportedFormat = "unsupported_format"
	IntakeErrorExtraction        = "extraction_failed"
	IntakeErrorStorage           = "storage_failed"
	IntakeErrorInternal          = "internal"

	NotExtracted = "No extraído"
	NotSpecified = "No especificado"
)

// CVFields is the structured data the model extracts from a CV.
type CVFields struct {
	FullName        string   `json:"nombre_completo"`
	Email           string   `json:"email"`
	Phone           string   `json:"telefono"`
	ExperienceYears string   `json:"experiencia_años"`
	CurrentRole     string   `json:"puesto_actual"`
	Skills          []string `json:"habilidades"`
	Education       string   `json:"educacion"`
	Languages       []string `json:"idiomas"`
	Location        string   `json:"ubicacion"`
	Summary         string   `json:"resumen_profesional"`
}

// NotExtractedFields is the fallback when the model output cannot be parsed.
func NotExtractedFields() CVFields {
	return CVFields{
		FullName:        NotExtracted,
		Email:           NotExtracted,
		Phone:           NotExtracted,
		ExperienceYears: NotSpecified,
		CurrentRole:     NotSpecified,
		Skills:          []string{},
		Education:       NotSpecified,
		Languages:       []string{},
		Location:        NotSpecified,
		Summary:         "Error en extracción automática",
	}
}

// ProfileVerdict is the pass/fail evaluation against the job rubric.
type ProfileVerdict struct {
	ProfileMatch  bool   `json:"cumple_perfil"`
	Justification string `json:"comentarios"`
}

// CVInfo is the intake result: extracted fields, durable locator and verdict.
type CVInfo struct {
	CVFields
	FilePath      string `json:"cv_file_path"`
	CVURL         string `json:"cv_url"`
	Filename      string `json:"filename"`
	ProcessedAt   string `json:"processed_date"`
	UserPhone     string `json:"user_phone"`
	UserName      string `json:"user_name_provided,omitempty"`
	ProfileMatch  bool   `json:"cumple_perfil"`
	AgentComments string `json:"comentarios_agente"`
}

// IntakeEnvelope is what the pipeline hands back; it never carries a raw error.
type IntakeEnvelope struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	CVInfo     *CVInfo `json:"cv_info"`
	Preview    string  `json:"cv_text_preview,omitempty"`
	StoredCopy string  `json:"stored_copy,omitempty"`
	ErrorKind  string  `json:"error_kind,omitempty"`
}

func (e *IntakeEnvelope) OK() bool {
	return e != nil && e.Status == IntakeStatusSuccess && e.CVInfo != nil
}
