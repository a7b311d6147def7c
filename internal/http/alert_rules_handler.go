package httpapi

import (
	"net/http"
	"strings"

	"checklist-safety/internal/alertrules"
	"checklist-safety/internal/evaluator"
	"checklist-safety/internal/models"

	"go.uber.org/zap"
)

// AlertRulesHandler exposes the rule engine
type AlertRulesHandler struct {
	engine *alertrules.Engine
	logger *zap.Logger
}

func NewAlertRulesHandler(engine *alertrules.Engine, logger *zap.Logger) *AlertRulesHandler {
	return &AlertRulesHandler{engine: engine, logger: logger}
}

// EvaluateRequest alertOnYes/alertOnNo are the flags already stored for the question
type EvaluateRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	AlertOnYes *bool  `json:"alertOnYes,omitempty"`
	AlertOnNo  *bool  `json:"alertOnNo,omitempty"`
}

type EvaluateResponse = evaluator.RuleExplanation

type ApplyResponse struct {
	Items   []models.ChecklistTemplateQuestion `json:"items"`
	Changed int                                `json:"changed"`
}

// Evaluate POST /api/v1/alert-rules/evaluate
func (h *AlertRulesHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, Fail("question is required"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(evaluator.Explain(h.engine, models.ChecklistAnswer{
		Question:   req.Question,
		Answer:     &req.Answer,
		AlertOnYes: req.AlertOnYes,
		AlertOnNo:  req.AlertOnNo,
	})))
}

// Apply POST /api/v1/alert-rules/apply
func (h *AlertRulesHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var rows []models.ChecklistTemplateQuestion
	if err := readBodyJSON(r, maxBodyBytes, &rows); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}

	repaired, changed := evaluator.RepairTemplate(h.engine, rows)
	h.logger.Debug("Applied alert rules to template rows",
		zap.Int("row_count", len(rows)),
		zap.Int("changed_count", len(changed)),
	)
	writeJSON(w, http.StatusOK, Ok(ApplyResponse{Items: repaired, Changed: len(changed)}))
}
