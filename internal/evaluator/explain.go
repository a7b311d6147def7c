package evaluator

import (
	"checklist-safety/internal/alertrules"
	"checklist-safety/internal/models"
)

// RuleExplanation how the engine resolved a single question and answer
type RuleExplanation struct {
	NormalizedQuestion string               `json:"normalizedQuestion"`
	Skipped            bool                 `json:"skipped"`
	Rule               alertrules.AlertRule `json:"rule"`
	TriggersAlert      bool                 `json:"triggersAlert"`
}

// Explain resolves answer against engine, seeded only by the answer's own flags
func Explain(engine *alertrules.Engine, answer models.ChecklistAnswer) RuleExplanation {
	existing := answer.StoredAlertRule()
	return RuleExplanation{
		NormalizedQuestion: alertrules.NormalizeQuestion(answer.Question),
		Skipped:            engine.IsSkipped(answer.Question),
		Rule:               engine.GetAlertRule(answer.Question, existing),
		TriggersAlert:      engine.ShouldTriggerAlert(answer.Question, answer.AnswerText(), existing),
	}
}
