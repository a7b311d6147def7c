package evaluator

import (
	"encoding/json"
	"strings"

	"checklist-safety/internal/models"

	"github.com/tidwall/gjson"
)

// ParseChecklistAnswers reads inspections.checklist_answers. Two shapes are
// stored: an array of answer objects, or an object mapping question to
// answer. Anything else yields no items.
func ParseChecklistAnswers(raw json.RawMessage) []models.ChecklistAnswer {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}

	res := gjson.ParseBytes(raw)
	// some rows hold the JSON document as a string
	if res.Type == gjson.String && gjson.Valid(res.Str) {
		res = gjson.Parse(res.Str)
	}

	var answers []models.ChecklistAnswer
	switch {
	case res.IsArray():
		res.ForEach(func(_, item gjson.Result) bool {
			if !item.IsObject() {
				return true
			}
			if a, ok := answerFromObject(item, ""); ok {
				answers = append(answers, a)
			}
			return true
		})
	case res.IsObject():
		res.ForEach(func(key, value gjson.Result) bool {
			if value.IsObject() {
				if a, ok := answerFromObject(value, key.String()); ok {
					answers = append(answers, a)
				}
				return true
			}
			question := strings.TrimSpace(key.String())
			if question == "" {
				return true
			}
			answers = append(answers, models.ChecklistAnswer{
				Question: question,
				Answer:   stringValue(value),
			})
			return true
		})
	}
	return answers
}

func answerFromObject(item gjson.Result, fallbackQuestion string) (models.ChecklistAnswer, bool) {
	question := strings.TrimSpace(first(item, "question", "pergunta").String())
	if question == "" {
		question = strings.TrimSpace(fallbackQuestion)
	}
	if question == "" {
		return models.ChecklistAnswer{}, false
	}
	return models.ChecklistAnswer{
		Question:   question,
		Answer:     stringValue(first(item, "answer", "resposta")),
		AlertOnYes: boolValue(first(item, "alertOnYes", "alert_on_yes")),
		AlertOnNo:  boolValue(first(item, "alertOnNo", "alert_on_no")),
	}, true
}

// first value present under any of keys
func first(item gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := item.Get(k); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func stringValue(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	return &s
}

func boolValue(r gjson.Result) *bool {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	b := r.Bool()
	return &b
}
