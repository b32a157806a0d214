package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  Date
	}{
		{"time", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Date{2024, time.May, 1}},
		{"string", "2024-05-08", Date{2024, time.May, 8}},
		{"bytes", []byte("2024-12-31"), Date{2024, time.December, 31}},
		{"datetime string", "2024-02-29 00:00:00", Date{2024, time.February, 29}},
		{"nil", nil, Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.value))
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDateAddDaysCrossesMonth(t *testing.T) {
	d := Date{2024, time.January, 30}
	assert.Equal(t, "2024-02-02", d.AddDays(3).String())
	assert.Equal(t, "2024-01-27", d.AddDays(-3).String())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)

	_, err = ParseDate("tomorrow")
	assert.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range Statuses() {
		want := s == StatusAccepted || s == StatusRejected
		assert.Equal(t, want, s.IsTerminal(), s)
	}
	assert.True(t, IsValidStatus("OFFER"))
	assert.False(t, IsValidStatus("DISCOVERED"))
	assert.Equal(t, "Interview", StatusInterview.Label())
}
