// Package content turns parsed slides into learning-module content:
// a summary (resumo), a multiple-choice quiz (tarefas) and a speaking
// practice prompt (oratorio) per slide.
package content

// QuestionTypeMultipleChoice is the only question type generated today.
const QuestionTypeMultipleChoice = "multiple_choice"

// OptionsPerQuestion is the fixed option count of every quiz question.
const OptionsPerQuestion = 4

type (
	ResumoContent struct {
		Text    string   `json:"text"`
		Bullets []string `json:"bullets"`
	}

	TarefaQuestion struct {
		Question string   `json:"question"`
		Type     string   `json:"type"` // always "multiple_choice"
		Options  []string `json:"options"`
		Correct  int      `json:"correct"` // 0-based index into Options
	}

	TarefasContent struct {
		Questions []TarefaQuestion `json:"questions"`
	}

	OratorioContent struct {
		Prompt       string `json:"prompt"`
		TargetPhrase string `json:"target_phrase"`
	}

	// ModuleContent is the full generated content for one slide; it is stored
	// as the module row's content_json. SlideNumber correlates with the
	// originating slide's 1-based number.
	ModuleContent struct {
		SlideNumber int             `json:"slide_number"`
		Title       string          `json:"title"`
		Resumo      ResumoContent   `json:"resumo"`
		Tarefas     TarefasContent  `json:"tarefas"`
		Oratorio    OratorioContent `json:"oratorio"`
	}
)

// Valid reports whether the content is structurally sound: every question
// carries exactly OptionsPerQuestion options and an in-range correct index.
// Used to re-validate AI responses before trusting field shapes.
func (mc *ModuleContent) Valid() bool {
	for _, q := range mc.Tarefas.Questions {
		if len(q.Options) != OptionsPerQuestion {
			return false
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return false
		}
	}
	return true
}
