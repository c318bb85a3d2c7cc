package intent

// Kind discriminates the four readings of a user turn.
type Kind string

const (
	KindCreate Kind = "create"
	KindRead   Kind = "read"
	KindDelete Kind = "delete"
	KindNone   Kind = "none"
)

// RecurrenceKind is the fixed repeat vocabulary. Anything else the model
// invents is normalized to RecurrenceNone.
type RecurrenceKind string

const (
	RecurrenceNone    RecurrenceKind = "none"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
	RecurrenceYearly  RecurrenceKind = "yearly"
)

// Intent is the structured reading of one user turn. Exactly one variant is
// populated, matching Kind. Fallback marks a NoneIntent substituted for
// model output that could not be decoded; callers use it to answer with a
// rephrase request instead of the usual capabilities reply.
type Intent struct {
	Kind     Kind          `json:"kind"`
	Create   *CreateIntent `json:"create,omitempty"`
	Read     *ReadIntent   `json:"read,omitempty"`
	Delete   *DeleteIntent `json:"delete,omitempty"`
	Fallback bool          `json:"-"`
}

// None returns the empty no-action intent.
func None() Intent {
	return Intent{Kind: KindNone}
}

// FallbackNone returns the no-action intent used when model output was
// unparseable.
func FallbackNone() Intent {
	return Intent{Kind: KindNone, Fallback: true}
}

// CreateIntent carries the slots for a new event. A complete intent has a
// date, a title, and either a clock time or the all-day marker; anything
// less must carry NeedsClarification and the question to ask.
type CreateIntent struct {
	Date                string         `json:"date,omitempty"`
	Time                string         `json:"time,omitempty"`
	Title               string         `json:"title,omitempty"`
	Description         string         `json:"description,omitempty"`
	DurationMinutes     int            `json:"duration_minutes,omitempty"`
	AllDay              bool           `json:"all_day,omitempty"`
	Recurrence          RecurrenceKind `json:"recurrence,omitempty"`
	NeedsClarification  bool           `json:"needs_clarification,omitempty"`
	ClarificationPrompt string         `json:"clarification_prompt,omitempty"`
}

// Complete reports whether every required creation slot is filled.
func (c *CreateIntent) Complete() bool {
	return c.Date != "" && c.Title != "" && (c.AllDay || c.Time != "")
}

// MissingSlot returns the first unfilled slot in the fixed date, title,
// time order, or "" when the intent is complete.
func (c *CreateIntent) MissingSlot() string {
	switch {
	case c.Date == "":
		return "date"
	case c.Title == "":
		return "title"
	case !c.AllDay && c.Time == "":
		return "time"
	}
	return ""
}

// ReadIntent asks for the schedule over a symbolic range.
type ReadIntent struct {
	RangeToken string `json:"range,omitempty"`
}

// DeleteIntent describes the event to remove: a fuzzy title, an optional
// date, and optional time filters.
type DeleteIntent struct {
	SearchTerm            string `json:"search_term,omitempty"`
	Date                  string `json:"date,omitempty"`
	Time                  string `json:"time,omitempty"`
	TimeRangeStart        string `json:"time_range_start,omitempty"`
	TimeRangeEnd          string `json:"time_range_end,omitempty"`
	NeedsClarification    bool   `json:"needs_clarification,omitempty"`
	ClarificationQuestion string `json:"clarification_question,omitempty"`
}

// clarifyFor maps a missing creation slot to the question to ask. Questions
// stay inside the six-word limit the system prompt imposes.
func clarifyFor(slot string) string {
	switch slot {
	case "date":
		return "What day should I schedule it?"
	case "title":
		return "What should I call it?"
	case "time":
		return "What time does it start?"
	}
	return ""
}
