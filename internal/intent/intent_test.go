package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateIntentComplete(t *testing.T) {
	tests := []struct {
		name string
		in   CreateIntent
		want bool
	}{
		{
			name: "date title and time",
			in:   CreateIntent{Date: "2026-03-20", Title: "Dentist", Time: "14:00"},
			want: true,
		},
		{
			name: "date title and all day",
			in:   CreateIntent{Date: "2026-03-20", Title: "Conference", AllDay: true},
			want: true,
		},
		{
			name: "missing time without all day",
			in:   CreateIntent{Date: "2026-03-20", Title: "Dentist"},
			want: false,
		},
		{
			name: "missing title",
			in:   CreateIntent{Date: "2026-03-20", Time: "14:00"},
			want: false,
		},
		{
			name: "missing date",
			in:   CreateIntent{Title: "Dentist", Time: "14:00"},
			want: false,
		},
		{
			name: "empty",
			in:   CreateIntent{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Complete())
		})
	}
}

func TestCreateIntentMissingSlotOrder(t *testing.T) {
	// Slots are asked for in date, title, time order.
	assert.Equal(t, "date", (&CreateIntent{}).MissingSlot())
	assert.Equal(t, "title", (&CreateIntent{Date: "2026-03-20"}).MissingSlot())
	assert.Equal(t, "time", (&CreateIntent{Date: "2026-03-20", Title: "Dentist"}).MissingSlot())
	assert.Equal(t, "", (&CreateIntent{Date: "2026-03-20", Title: "Dentist", Time: "14:00"}).MissingSlot())
	assert.Equal(t, "", (&CreateIntent{Date: "2026-03-20", Title: "Dentist", AllDay: true}).MissingSlot())
}

func TestNoneConstructors(t *testing.T) {
	plain := None()
	assert.Equal(t, KindNone, plain.Kind)
	assert.False(t, plain.Fallback)

	fallback := FallbackNone()
	assert.Equal(t, KindNone, fallback.Kind)
	assert.True(t, fallback.Fallback)
}
