package evaluator

import (
	"time"

	"checklist-safety/internal/alertrules"
	"checklist-safety/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EvaluatedAnswer checklist answer with its resolved rule
type EvaluatedAnswer struct {
	models.ChecklistAnswer
	Rule          alertrules.AlertRule `json:"rule"`
	TriggersAlert bool                 `json:"triggersAlert"`
}

// EvaluatedInspection inspection annotated with problem and order status
type EvaluatedInspection struct {
	models.Inspection
	Answers      []EvaluatedAnswer `json:"answers"`
	HasProblems  bool              `json:"has_problems"`
	HasOpenOrder bool              `json:"has_open_order"`
}

// Evaluator applies the alert rules to submitted checklists
type Evaluator struct {
	engine   *alertrules.Engine
	template map[string]alertrules.AlertRule
	orders   OpenOrderIndex
	logger   *zap.Logger
}

// New indexes the template flags by normalized question. Rows without flags
// are skipped.
func New(engine *alertrules.Engine, template []models.ChecklistTemplateQuestion, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := make(map[string]alertrules.AlertRule, len(template))
	for _, row := range template {
		if rule := row.StoredAlertRule(); rule != nil {
			index[alertrules.NormalizeQuestion(row.Question)] = *rule
		}
	}
	return &Evaluator{engine: engine, template: index, logger: logger}
}

// WithOpenOrders returns an evaluator that also flags inspections with open
// maintenance orders.
func (e *Evaluator) WithOpenOrders(orders []models.MaintenanceOrder) *Evaluator {
	cp := *e
	cp.orders = NewOpenOrderIndex(orders)
	return &cp
}

// seed stored answer flags win over the current template flags
func (e *Evaluator) seed(answer models.ChecklistAnswer) *alertrules.AlertRule {
	if stored := answer.StoredAlertRule(); stored != nil {
		return stored
	}
	if rule, ok := e.template[alertrules.NormalizeQuestion(answer.Question)]; ok {
		return &rule
	}
	return nil
}

// EvaluateAnswer resolves the rule for one answer
func (e *Evaluator) EvaluateAnswer(answer models.ChecklistAnswer) EvaluatedAnswer {
	seed := e.seed(answer)
	return EvaluatedAnswer{
		ChecklistAnswer: answer,
		Rule:            e.engine.GetAlertRule(answer.Question, seed),
		TriggersAlert:   e.engine.ShouldTriggerAlert(answer.Question, answer.AnswerText(), seed),
	}
}

// Evaluate annotates every answer of an inspection
func (e *Evaluator) Evaluate(in models.Inspection) EvaluatedInspection {
	items := ParseChecklistAnswers(in.ChecklistAnswers)
	if len(items) == 0 && len(in.ChecklistAnswers) > 0 {
		e.logger.Debug("No checklist answers parsed",
			zap.String("inspection_id", in.ID),
			zap.Int("raw_size", len(in.ChecklistAnswers)),
		)
	}

	out := EvaluatedInspection{
		Inspection:   in,
		Answers:      make([]EvaluatedAnswer, 0, len(items)),
		HasOpenOrder: e.orders.Has(in),
	}
	for _, item := range items {
		ev := e.EvaluateAnswer(item)
		if ev.TriggersAlert {
			out.HasProblems = true
		}
		out.Answers = append(out.Answers, ev)
	}
	return out
}

// EvaluateAll evaluates inspections in order
func (e *Evaluator) EvaluateAll(inspections []models.Inspection) []EvaluatedInspection {
	out := make([]EvaluatedInspection, 0, len(inspections))
	for _, in := range inspections {
		out = append(out, e.Evaluate(in))
	}
	return out
}

// EquipmentID column value, else the joined relation id
func EquipmentID(in models.Inspection) string {
	if id := models.TrimmedString(in.EquipmentID); id != "" {
		return id
	}
	if in.Equipment != nil {
		return in.Equipment.ID
	}
	return ""
}

// BuildAlertRecords one record per triggering answer
func BuildAlertRecords(ev EvaluatedInspection, now time.Time) []models.AlertRecord {
	var records []models.AlertRecord
	for _, a := range ev.Answers {
		if !a.TriggersAlert {
			continue
		}
		records = append(records, models.AlertRecord{
			ID:                uuid.New().String(),
			InspectionID:      ev.ID,
			EquipmentID:       EquipmentID(ev.Inspection),
			Question:          a.Question,
			Answer:            a.AnswerText(),
			OperatorMatricula: ev.OperatorMatricula,
			Status:            models.AlertStatusOpen,
			TriggeredAt:       now,
		})
	}
	return records
}

// RepairTemplate aligns every template row with the current rule policy.
// changed holds the repaired rows whose flags differ from the input.
func RepairTemplate(engine *alertrules.Engine, rows []models.ChecklistTemplateQuestion) (repaired, changed []models.ChecklistTemplateQuestion) {
	repaired = make([]models.ChecklistTemplateQuestion, 0, len(rows))
	for _, row := range rows {
		fixed := alertrules.ApplyAlertRuleToItem(engine, row)
		repaired = append(repaired, fixed)
		if !fixed.SameFlags(row) {
			changed = append(changed, fixed)
		}
	}
	return repaired, changed
}
