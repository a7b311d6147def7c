package evaluator

import (
	"encoding/json"
	"testing"
	"time"

	"checklist-safety/internal/alertrules"
	"checklist-safety/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	brakeQuestion = "O sistema de freios do guincho está funcionando?"
	plateQuestion = "A corrente possui a plaqueta de identificação instalada?"
	colorQuestion = "Qual a cor predominante do equipamento?"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newEvaluator(template []models.ChecklistTemplateQuestion) *Evaluator {
	return New(alertrules.NewEngine(alertrules.DefaultRuleSet()), template, zap.NewNop())
}

func TestParseChecklistAnswers_Array(t *testing.T) {
	raw := json.RawMessage(`[
		{"question": "Q1", "answer": "Sim", "alertOnYes": true},
		{"pergunta": "Q2", "resposta": "Não", "alert_on_no": true, "alert_on_yes": false},
		{"question": "Q3", "answer": null},
		{"answer": "orphan"},
		"not an object"
	]`)

	answers := ParseChecklistAnswers(raw)
	require.Len(t, answers, 3)

	assert.Equal(t, "Q1", answers[0].Question)
	assert.Equal(t, "Sim", answers[0].AnswerText())
	require.NotNil(t, answers[0].AlertOnYes)
	assert.True(t, *answers[0].AlertOnYes)
	assert.Nil(t, answers[0].AlertOnNo)

	assert.Equal(t, "Q2", answers[1].Question)
	assert.Equal(t, "Não", answers[1].AnswerText())
	assert.True(t, *answers[1].AlertOnNo)
	assert.False(t, *answers[1].AlertOnYes)

	assert.Nil(t, answers[2].Answer)
}

func TestParseChecklistAnswers_ObjectMap(t *testing.T) {
	raw := json.RawMessage(`{"Q1": "Sim", "Q2": {"answer": "Não", "alertOnNo": true}, "Q3": null}`)

	answers := ParseChecklistAnswers(raw)
	require.Len(t, answers, 3)
	assert.Equal(t, "Q1", answers[0].Question)
	assert.Equal(t, "Sim", answers[0].AnswerText())
	assert.Equal(t, "Q2", answers[1].Question)
	assert.True(t, *answers[1].AlertOnNo)
	assert.Nil(t, answers[2].Answer)
}

func TestParseChecklistAnswers_StringEncodedDocument(t *testing.T) {
	raw := json.RawMessage(`"[{\"question\":\"Q1\",\"answer\":\"Sim\"}]"`)

	answers := ParseChecklistAnswers(raw)
	require.Len(t, answers, 1)
	assert.Equal(t, "Q1", answers[0].Question)
}

func TestParseChecklistAnswers_Malformed(t *testing.T) {
	for _, raw := range []string{``, `null`, `42`, `{broken`, `"plain text"`} {
		assert.Empty(t, ParseChecklistAnswers(json.RawMessage(raw)), raw)
	}
}

func TestEvaluate_FlagsProblems(t *testing.T) {
	ev := newEvaluator(nil)
	in := models.Inspection{
		ID:                "i1",
		OperatorMatricula: "4321",
		EquipmentID:       strPtr("e1"),
		ChecklistAnswers: json.RawMessage(`[
			{"question": "O sistema de freios do guincho está funcionando?", "answer": "Não"},
			{"question": "A corrente possui a plaqueta de identificação instalada?", "answer": "Não"},
			{"question": "O cabo de aço possui fios rompidos?", "answer": "N/A"}
		]`),
	}

	out := ev.Evaluate(in)
	require.Len(t, out.Answers, 3)
	assert.True(t, out.HasProblems)
	assert.True(t, out.Answers[0].TriggersAlert)
	assert.Equal(t, alertrules.AlertRule{OnNo: true}, out.Answers[0].Rule)
	assert.False(t, out.Answers[1].TriggersAlert)
	assert.False(t, out.Answers[2].TriggersAlert)

	records := BuildAlertRecords(out, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.Equal(t, "i1", records[0].InspectionID)
	assert.Equal(t, "e1", records[0].EquipmentID)
	assert.Equal(t, brakeQuestion, records[0].Question)
	assert.Equal(t, "Não", records[0].Answer)
	assert.Equal(t, "4321", records[0].OperatorMatricula)
	assert.Equal(t, models.AlertStatusOpen, records[0].Status)
}

func TestEvaluate_NoProblems(t *testing.T) {
	out := newEvaluator(nil).Evaluate(models.Inspection{
		ID:               "i2",
		ChecklistAnswers: json.RawMessage(`{"O sistema de freios do guincho está funcionando?": "Sim"}`),
	})
	assert.False(t, out.HasProblems)
	assert.Empty(t, BuildAlertRecords(out, time.Now()))
}

func TestEvaluate_TemplateFlagsSeedUnflaggedAnswers(t *testing.T) {
	template := []models.ChecklistTemplateQuestion{
		{ID: "t1", Question: "Qual a cor predominante do equipamento", AlertOnYes: boolPtr(true)},
	}
	ev := newEvaluator(template)

	seeded := ev.EvaluateAnswer(models.ChecklistAnswer{Question: colorQuestion, Answer: strPtr("Sim")})
	assert.True(t, seeded.TriggersAlert)

	// the answer's own flags win over the template
	own := ev.EvaluateAnswer(models.ChecklistAnswer{
		Question:   colorQuestion,
		Answer:     strPtr("Sim"),
		AlertOnYes: boolPtr(false),
		AlertOnNo:  boolPtr(true),
	})
	assert.False(t, own.TriggersAlert)
}

func TestEvaluate_SkipSetIgnoresTemplate(t *testing.T) {
	template := []models.ChecklistTemplateQuestion{
		{Question: plateQuestion, AlertOnYes: boolPtr(true), AlertOnNo: boolPtr(true)},
	}
	ev := newEvaluator(template)

	for _, answer := range []string{"Sim", "Não"} {
		assert.False(t, ev.EvaluateAnswer(models.ChecklistAnswer{Question: plateQuestion, Answer: strPtr(answer)}).TriggersAlert)
	}
}

func TestEvaluate_OpenOrders(t *testing.T) {
	orders := []models.MaintenanceOrder{
		{ID: "o1", InspectionID: strPtr("i1"), Status: "aberta"},
		{ID: "o2", EquipmentID: strPtr("e2"), Status: "em_andamento"},
		{ID: "o3", InspectionID: strPtr("i3"), Status: "concluida"},
	}
	ev := newEvaluator(nil).WithOpenOrders(orders)

	assert.True(t, ev.Evaluate(models.Inspection{ID: "i1"}).HasOpenOrder)
	assert.True(t, ev.Evaluate(models.Inspection{ID: "i9", Equipment: &models.Equipment{ID: "e2"}}).HasOpenOrder)
	assert.False(t, ev.Evaluate(models.Inspection{ID: "i3"}).HasOpenOrder)
	assert.False(t, ev.Evaluate(models.Inspection{ID: "i4"}).HasOpenOrder)
}

func TestRepairTemplate(t *testing.T) {
	engine := alertrules.NewEngine(alertrules.DefaultRuleSet())
	rows := []models.ChecklistTemplateQuestion{
		{ID: "t1", Question: brakeQuestion, AlertOnYes: boolPtr(false), AlertOnNo: boolPtr(true)},
		{ID: "t2", Question: plateQuestion, AlertOnNo: boolPtr(true)},
		{ID: "t3", Question: colorQuestion},
	}

	repaired, changed := RepairTemplate(engine, rows)
	require.Len(t, repaired, 3)
	require.Len(t, changed, 2)

	assert.Equal(t, "t2", changed[0].ID)
	assert.False(t, *changed[0].AlertOnNo)
	assert.False(t, *changed[0].AlertOnYes)

	// unflagged rows are materialized with explicit false flags
	assert.Equal(t, "t3", changed[1].ID)
	require.NotNil(t, changed[1].AlertOnYes)

	// input untouched
	assert.True(t, *rows[1].AlertOnNo)
	assert.Nil(t, rows[2].AlertOnYes)
}

func TestExplain(t *testing.T) {
	engine := alertrules.NewEngine(alertrules.DefaultRuleSet())

	got := Explain(engine, models.ChecklistAnswer{
		Question: brakeQuestion,
		Answer:   strPtr("NÃO"),
	})
	assert.Equal(t, RuleExplanation{
		NormalizedQuestion: "o sistema de freios do guincho esta funcionando",
		Rule:               alertrules.AlertRule{OnNo: true},
		TriggersAlert:      true,
	}, got)

	skipped := Explain(engine, models.ChecklistAnswer{
		Question:  plateQuestion,
		Answer:    strPtr("Não"),
		AlertOnNo: boolPtr(true),
	})
	assert.True(t, skipped.Skipped)
	assert.False(t, skipped.TriggersAlert)
	assert.Equal(t, alertrules.AlertRule{}, skipped.Rule)
}
