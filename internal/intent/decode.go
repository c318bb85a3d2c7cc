package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/xeipuuv/gojsonschema"
)

// wireIntent is the flat shape the model returns: one object whose fields
// double as all four variants, discriminated by "intent".
type wireIntent struct {
	Intent             string `json:"intent"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	DurationMinutes    int    `json:"duration_minutes"`
	AllDay             bool   `json:"all_day"`
	Recurrence         string `json:"recurrence"`
	Range              string `json:"range"`
	SearchTerm         string `json:"search_term"`
	TimeRangeStart     string `json:"time_range_start"`
	TimeRangeEnd       string `json:"time_range_end"`
	NeedsClarification bool   `json:"needs_clarification"`
	Clarification      string `json:"clarification"`
}

var wireSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"intent"},
	"properties": map[string]interface{}{
		"intent": map[string]interface{}{
			"type": "string",
			"enum": []string{"create", "read", "delete", "none"},
		},
		"date":                map[string]interface{}{"type": []string{"string", "null"}},
		"time":                map[string]interface{}{"type": []string{"string", "null"}},
		"title":               map[string]interface{}{"type": []string{"string", "null"}},
		"description":         map[string]interface{}{"type": []string{"string", "null"}},
		"duration_minutes":    map[string]interface{}{"type": []string{"integer", "null"}},
		"all_day":             map[string]interface{}{"type": []string{"boolean", "null"}},
		"recurrence":          map[string]interface{}{"type": []string{"string", "null"}},
		"range":               map[string]interface{}{"type": []string{"string", "null"}},
		"search_term":         map[string]interface{}{"type": []string{"string", "null"}},
		"time_range_start":    map[string]interface{}{"type": []string{"string", "null"}},
		"time_range_end":      map[string]interface{}{"type": []string{"string", "null"}},
		"needs_clarification": map[string]interface{}{"type": []string{"boolean", "null"}},
		"clarification":       map[string]interface{}{"type": []string{"string", "null"}},
	},
}

// DecodeResponse turns raw model text into a typed intent. The text passes
// three stages: brace extraction (models wrap JSON in prose and markdown
// fences), a repair pass for almost-JSON, and schema validation before the
// typed mapping. Callers treat any error here as "could not understand",
// never as a hard failure.
func DecodeResponse(raw string) (Intent, error) {
	jsonText := ExtractJSON(raw)
	if jsonText == "" {
		return Intent{}, fmt.Errorf("no JSON object in model response")
	}

	if !json.Valid([]byte(jsonText)) {
		repaired, err := jsonrepair.JSONRepair(jsonText)
		if err != nil {
			return Intent{}, fmt.Errorf("response is not repairable JSON: %w", err)
		}
		jsonText = repaired
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(wireSchema),
		gojsonschema.NewStringLoader(jsonText),
	)
	if err != nil {
		return Intent{}, fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return Intent{}, fmt.Errorf("response does not match intent schema: %s", strings.Join(details, "; "))
	}

	var wire wireIntent
	if err := json.Unmarshal([]byte(jsonText), &wire); err != nil {
		return Intent{}, fmt.Errorf("failed to unmarshal intent: %w", err)
	}

	return wire.toIntent(), nil
}

func (w *wireIntent) toIntent() Intent {
	switch w.Intent {
	case "create":
		create := &CreateIntent{
			Date:                w.Date,
			Time:                w.Time,
			Title:               strings.TrimSpace(w.Title),
			Description:         w.Description,
			DurationMinutes:     w.DurationMinutes,
			AllDay:              w.AllDay,
			Recurrence:          normalizeRecurrence(w.Recurrence),
			NeedsClarification:  w.NeedsClarification,
			ClarificationPrompt: w.Clarification,
		}
		if create.DurationMinutes <= 0 {
			create.DurationMinutes = 60
		}
		// The model guarantees completeness before signaling ready; enforce
		// it anyway so an incomplete create can never slip through as ready.
		if !create.NeedsClarification && !create.Complete() {
			create.NeedsClarification = true
			create.ClarificationPrompt = clarifyFor(create.MissingSlot())
		}
		if create.NeedsClarification && create.ClarificationPrompt == "" {
			create.ClarificationPrompt = clarifyFor(create.MissingSlot())
		}
		return Intent{Kind: KindCreate, Create: create}

	case "read":
		return Intent{Kind: KindRead, Read: &ReadIntent{RangeToken: w.Range}}

	case "delete":
		del := &DeleteIntent{
			SearchTerm:            strings.TrimSpace(w.SearchTerm),
			Date:                  w.Date,
			Time:                  w.Time,
			TimeRangeStart:        w.TimeRangeStart,
			TimeRangeEnd:          w.TimeRangeEnd,
			NeedsClarification:    w.NeedsClarification,
			ClarificationQuestion: w.Clarification,
		}
		if del.NeedsClarification && del.ClarificationQuestion == "" {
			del.ClarificationQuestion = "Which event should I delete?"
		}
		return Intent{Kind: KindDelete, Delete: del}
	}

	return None()
}

func normalizeRecurrence(value string) RecurrenceKind {
	switch RecurrenceKind(strings.ToLower(strings.TrimSpace(value))) {
	case RecurrenceDaily:
		return RecurrenceDaily
	case RecurrenceWeekly:
		return RecurrenceWeekly
	case RecurrenceMonthly:
		return RecurrenceMonthly
	case RecurrenceYearly:
		return RecurrenceYearly
	}
	return RecurrenceNone
}

// ExtractJSON pulls the first balanced JSON object out of text that may wrap
// it in markdown fences or prose. Returns "" when no object is present.
func ExtractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	// Unterminated object, hand the tail to the repair stage.
	return text[start:]
}
