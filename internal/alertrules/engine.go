package alertrules

import "strings"

// AlertRule says which answer to a question raises an alert
type AlertRule struct {
	OnYes bool `json:"onYes"`
	OnNo  bool `json:"onNo"`
}

// RuleEntry one registration in the rule table
type RuleEntry struct {
	Question string
	Rule     AlertRule
}

// RuleSet immutable rule configuration. Rules are applied in order, so a
// later registration of the same normalized question replaces an earlier one.
type RuleSet struct {
	Rules         []RuleEntry
	Skip          []string
	OnNoKeywords  []string
	OnYesKeywords []string
}

// Engine resolves alert rules. It is read-only after NewEngine and can be
// shared between goroutines.
type Engine struct {
	rules         map[string]AlertRule
	skip          map[string]struct{}
	onNoKeywords  []string
	onYesKeywords []string
}

// NewEngine normalizes every key of the rule set once
func NewEngine(set RuleSet) *Engine {
	e := &Engine{
		rules:         make(map[string]AlertRule, len(set.Rules)),
		skip:          make(map[string]struct{}, len(set.Skip)),
		onNoKeywords:  normalizeKeywords(set.OnNoKeywords),
		onYesKeywords: normalizeKeywords(set.OnYesKeywords),
	}
	for _, entry := range set.Rules {
		e.rules[NormalizeQuestion(entry.Question)] = entry.Rule
	}
	for _, q := range set.Skip {
		e.skip[NormalizeQuestion(q)] = struct{}{}
	}
	return e
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if n := NormalizeQuestion(k); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// IsSkipped reports whether the question can never alert
func (e *Engine) IsSkipped(question string) bool {
	_, ok := e.skip[NormalizeQuestion(question)]
	return ok
}

// ExplicitRule returns the rule-table entry for question, if any
func (e *Engine) ExplicitRule(question string) (AlertRule, bool) {
	rule, ok := e.rules[NormalizeQuestion(question)]
	return rule, ok
}

// RuleCount number of distinct normalized questions in the table
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// GetAlertRule resolves the flags for question.
// Order: skip set, then existing flags, then the explicit rule (overwrites),
// then keyword heuristics when both flags are still false.
func (e *Engine) GetAlertRule(question string, existing *AlertRule) AlertRule {
	normalized := NormalizeQuestion(question)
	if _, skipped := e.skip[normalized]; skipped {
		return AlertRule{}
	}
	return e.resolve(normalized, existing)
}

func (e *Engine) resolve(normalized string, existing *AlertRule) AlertRule {
	var rule AlertRule
	if existing != nil {
		rule = *existing
	}

	if explicit, ok := e.rules[normalized]; ok {
		rule = explicit
	}

	if !rule.OnYes && !rule.OnNo {
		switch {
		case containsAny(normalized, e.onNoKeywords):
			rule.OnNo = true
		case containsAny(normalized, e.onYesKeywords):
			rule.OnYes = true
		}
	}

	return rule
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ShouldTriggerAlert reports whether answer to question raises an alert.
// Only explicit yes/no answers can alert.
func (e *Engine) ShouldTriggerAlert(question, answer string, existing *AlertRule) bool {
	normalized := NormalizeQuestion(question)
	if _, skipped := e.skip[normalized]; skipped {
		return false
	}

	rule := e.resolve(normalized, existing)

	switch NormalizeAnswer(answer) {
	case "sim":
		return rule.OnYes
	case "nao":
		return rule.OnNo
	default:
		return false
	}
}

// AlertItem is any checklist value that carries a question and optional
// stored alert flags.
type AlertItem[T any] interface {
	AlertQuestion() string
	// StoredAlertRule returns nil when the item has no flags of its own.
	StoredAlertRule() *AlertRule
	WithAlertRule(rule AlertRule) T
}

// ApplyAlertRuleToItem returns a copy of item whose flags match the current
// rule policy, seeded from the item's own flags. item is not modified.
func ApplyAlertRuleToItem[T AlertItem[T]](e *Engine, item T) T {
	rule := e.GetAlertRule(item.AlertQuestion(), item.StoredAlertRule())
	return item.WithAlertRule(rule)
}
