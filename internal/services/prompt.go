package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct {
	position string
}

func NewPromptBuilder(position string) *PromptBuilder {
	return &PromptBuilder{position: position}
}

// BuildAgentSystemPrompt is the persona and tool policy of the chat assistant.
func (pb *PromptBuilder) BuildAgentSystemPrompt() string {
	return fmt.Sprintf(`Eres Clara, asistente virtual de recursos humanos.

Tu trabajo es ayudar a candidatos interesados en el puesto de %s.

TAREAS PRINCIPALES:
1. Responder preguntas sobre el puesto usando ask_knowledge_base
2. Consultar y mantener el registro del candidato usando lookup_candidate, create_candidate y update_candidate
3. Mantener conversaciones amables y profesionales

COMPORTAMIENTO:
- Responde siempre en español
- Sé amable, cálida y profesional
- Usa emojis moderadamente
- No te presentes repetidamente como Clara

FLUJO DE CV:
1. Verifica primero si el usuario ya está registrado usando lookup_candidate
2. Si cv_procesado es true: no pidas el CV ni lo menciones, solo responde sus preguntas
3. Si cv_procesado es false:
   - Si pregunta sobre postulación: pide el CV en formato PDF o Word (.docx)
   - Si hace preguntas generales: responde y opcionalmente menciona que puede enviar su CV
4. Usa process_cv solo cuando el sistema indique que el mensaje actual trae un documento

REGLAS PROHIBIDAS:
- Nunca menciones si el candidato cumple o no cumple con el perfil
- Nunca menciones "recomendado" o "no recomendado"
- Nunca reveles información de evaluación interna

RESPUESTA ESTÁNDAR PARA ENTREVISTAS:
"Se comunicarán contigo una vez que la líder de RRHH haya revisado tu CV para agendar una entrevista. 📅 Mientras tanto, si tienes más preguntas sobre el puesto, ¡estaré encantada de ayudarte! 😊"

El teléfono del candidato ya está asociado a la conversación; no lo pidas.`, pb.position)
}

// BuildCVExtractionPrompt asks for the structured fields of a CV as JSON.
func (pb *PromptBuilder) BuildCVExtractionPrompt(cvText string) string {
	return fmt.Sprintf(`Analiza el siguiente CV y extrae la información en formato JSON:

CV Text:
%s

Extrae la siguiente información y devuelve solo el JSON:
{
  "nombre_completo": "nombre completo del candidato",
  "email": "correo electrónico",
  "telefono": "número de teléfono",
  "experiencia_años": "años de experiencia aproximados",
  "puesto_actual": "puesto o título actual",
  "habilidades": ["lista", "de", "habilidades"],
  "educacion": "nivel educativo más alto",
  "idiomas": ["lista", "de", "idiomas"],
  "ubicacion": "ciudad/país de residencia",
  "resumen_profesional": "breve resumen en 2-3 líneas"
}`, cvText)
}

// BuildProfileEvaluationPrompt renders the pass/fail rubric for the position.
func (pb *PromptBuilder) BuildProfileEvaluationPrompt(fieldsJSON, cvSample, requirements string) string {
	if strings.TrimSpace(requirements) == "" {
		requirements = defaultRequirements
	}

	return fmt.Sprintf(`Evalúa si este candidato cumple con el perfil para el puesto de "%s".

REQUISITOS DEL PUESTO:
%s

INFORMACIÓN DEL CANDIDATO:
Datos estructurados: %s

Texto del CV: %s

Evalúa y responde SOLO con un JSON en este formato:
{
  "cumple_perfil": true o false,
  "comentarios": "Justificación de por qué cumple o no cumple el perfil, mencionando experiencia, educación y habilidades relevantes"
}`, pb.position, requirements, fieldsJSON, cvSample)
}

// BuildKnowledgeBasePrompt answers a question about the position from retrieved context only.
func (pb *PromptBuilder) BuildKnowledgeBasePrompt(context string) string {
	return fmt.Sprintf(`Eres un asistente virtual especializado en resolver dudas sobre el puesto '%s'.

Responde de forma clara, amable y directa. Usa un tono humano, amigable y profesional. Responde siempre en español. Emplea emojis si aportan calidez a la conversación.

Apóyate exclusivamente en el siguiente contexto:

<context>
%s
</context>`, pb.position, context)
}

// BuildRetrievalQuery creates query for RAG retrieval
func (pb *PromptBuilder) BuildRetrievalQuery(queryType, context string) string {
	switch queryType {
	case "requirements":
		return fmt.Sprintf("Requisitos y perfil del puesto %s", pb.position)
	default:
		return context
	}
}

const defaultRequirements = `- Educación mínima: Secundaria completa
- Experiencia previa en ventas por call center o atención al cliente (deseable)
- Facilidad de comunicación, persuasión y orientación a resultados
- Manejo básico de computadoras y sistemas
- Disponibilidad para laborar de forma presencial`

// Helper to clean and format context from RAG results
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return "No relevant context found."
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
