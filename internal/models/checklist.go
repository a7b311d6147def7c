package models

import (
	"encoding/json"
	"strings"
	"time"

	"checklist-safety/internal/alertrules"
)

// Equipment equipments table row
type Equipment struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	KP           string  `json:"kp"`
	Sector       string  `json:"sector"`
	Capacity     *string `json:"capacity,omitempty"`
	Type         *string `json:"type,omitempty"`
	BridgeNumber string  `json:"bridge_number,omitempty"` // legacy alias of kp
}

// Inspection inspections table row
type Inspection struct {
	ID                string          `json:"id"`
	OperatorMatricula string          `json:"operator_matricula"`
	EquipmentID       *string         `json:"equipment_id,omitempty"`
	InspectionDate    *string         `json:"inspection_date,omitempty"`
	SubmissionDate    *string         `json:"submission_date,omitempty"`
	ChecklistAnswers  json.RawMessage `json:"checklist_answers,omitempty"`
	Comments          *string         `json:"comments,omitempty"`
	Photos            json.RawMessage `json:"photos,omitempty"`
	Signature         *string         `json:"signature,omitempty"`

	// joined relation, only set when the source embeds it
	Equipment *Equipment `json:"equipment,omitempty"`
}

// ChecklistAnswer one answered item inside inspections.checklist_answers
type ChecklistAnswer struct {
	Question   string  `json:"question"`
	Answer     *string `json:"answer"`
	AlertOnYes *bool   `json:"alertOnYes,omitempty"`
	AlertOnNo  *bool   `json:"alertOnNo,omitempty"`
}

// AnswerText answer or "" when unanswered
func (a ChecklistAnswer) AnswerText() string {
	if a.Answer == nil {
		return ""
	}
	return *a.Answer
}

func (a ChecklistAnswer) AlertQuestion() string { return a.Question }

func (a ChecklistAnswer) StoredAlertRule() *alertrules.AlertRule {
	return storedRule(a.AlertOnYes, a.AlertOnNo)
}

func (a ChecklistAnswer) WithAlertRule(rule alertrules.AlertRule) ChecklistAnswer {
	a.AlertOnYes, a.AlertOnNo = boolPtr(rule.OnYes), boolPtr(rule.OnNo)
	return a
}

// ChecklistTemplateQuestion checklist_template table row
type ChecklistTemplateQuestion struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	AlertOnYes  *bool  `json:"alert_on_yes,omitempty"`
	AlertOnNo   *bool  `json:"alert_on_no,omitempty"`
	OrderNumber int    `json:"order_number"`
}

func (q ChecklistTemplateQuestion) AlertQuestion() string { return q.Question }

func (q ChecklistTemplateQuestion) StoredAlertRule() *alertrules.AlertRule {
	return storedRule(q.AlertOnYes, q.AlertOnNo)
}

func (q ChecklistTemplateQuestion) WithAlertRule(rule alertrules.AlertRule) ChecklistTemplateQuestion {
	q.AlertOnYes, q.AlertOnNo = boolPtr(rule.OnYes), boolPtr(rule.OnNo)
	return q
}

// SameFlags reports whether both rows carry the same effective alert flags
func (q ChecklistTemplateQuestion) SameFlags(other ChecklistTemplateQuestion) bool {
	return sameFlag(q.AlertOnYes, other.AlertOnYes) && sameFlag(q.AlertOnNo, other.AlertOnNo)
}

func sameFlag(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// storedRule nil when neither flag was ever set; a missing flag counts as false
func storedRule(onYes, onNo *bool) *alertrules.AlertRule {
	if onYes == nil && onNo == nil {
		return nil
	}
	return &alertrules.AlertRule{OnYes: flagValue(onYes), OnNo: flagValue(onNo)}
}

func flagValue(b *bool) bool {
	return b != nil && *b
}

func boolPtr(b bool) *bool {
	return &b
}

// MaintenanceOrder maintenance_orders table row (OS)
type MaintenanceOrder struct {
	ID           string    `json:"id"`
	InspectionID *string   `json:"inspection_id,omitempty"`
	EquipmentID  *string   `json:"equipment_id,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

var closedOrderStatuses = map[string]struct{}{
	"closed":    {},
	"concluida": {},
	"cancelada": {},
	"cancelled": {},
}

// IsOpen an order is open until it reaches a terminal status
func (o MaintenanceOrder) IsOpen() bool {
	_, closed := closedOrderStatuses[alertrules.NormalizeAnswer(o.Status)]
	return !closed
}

// AlertRecord one triggered answer, persisted to the alerts table
type AlertRecord struct {
	ID                string    `json:"id"`
	InspectionID      string    `json:"inspection_id"`
	EquipmentID       string    `json:"equipment_id"`
	Question          string    `json:"question"`
	Answer            string    `json:"answer"`
	OperatorMatricula string    `json:"operator_matricula"`
	Status            string    `json:"status"`
	TriggeredAt       time.Time `json:"triggered_at"`
}

// AlertStatusOpen status of a freshly generated alert
const AlertStatusOpen = "aberto"

// TrimmedString value of s without surrounding blanks, "" for nil
func TrimmedString(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
