package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeTimeTogether(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		now  time.Time
		want TimeTogether
	}{
		{
			name: "two years across a leap day",
			date: day(2022, 10, 26),
			now:  day(2024, 10, 27),
			want: TimeTogether{Days: 732, Started: true},
		},
		{
			name: "hours minutes seconds remainder",
			date: day(2024, 1, 1),
			now:  time.Date(2024, 1, 3, 5, 6, 7, 0, time.UTC),
			want: TimeTogether{Days: 2, Hours: 5, Minutes: 6, Seconds: 7, Started: true},
		},
		{
			name: "exactly at start",
			date: day(2024, 1, 1),
			now:  day(2024, 1, 1),
			want: TimeTogether{Started: true},
		},
		{
			name: "anniversary in the future",
			date: day(2030, 1, 1),
			now:  day(2024, 1, 1),
			want: TimeTogether{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTimeTogether(tt.date, tt.now, time.UTC))
		})
	}
}

func TestComputeNextAnniversary(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		now       time.Time
		wantDate  time.Time
		wantDays  int
		wantYears int
	}{
		{
			name:      "passed this year",
			date:      day(2022, 10, 26),
			now:       day(2024, 10, 27),
			wantDate:  day(2025, 10, 26),
			wantDays:  364,
			wantYears: 3,
		},
		{
			name:      "tomorrow",
			date:      day(2022, 10, 26),
			now:       day(2024, 10, 25),
			wantDate:  day(2024, 10, 26),
			wantDays:  1,
			wantYears: 2,
		},
		{
			name:      "partial day rounds up",
			date:      day(2022, 10, 26),
			now:       time.Date(2024, 10, 24, 18, 0, 0, 0, time.UTC),
			wantDate:  day(2024, 10, 26),
			wantDays:  2,
			wantYears: 2,
		},
		{
			name:      "exactly at midnight counts as today",
			date:      day(2022, 10, 26),
			now:       day(2024, 10, 26),
			wantDate:  day(2024, 10, 26),
			wantDays:  0,
			wantYears: 2,
		},
		{
			name:      "leap day in a common year rolls to march first",
			date:      day(2020, 2, 29),
			now:       day(2025, 1, 10),
			wantDate:  day(2025, 3, 1),
			wantDays:  50,
			wantYears: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeNextAnniversary(tt.date, tt.now, time.UTC)
			assert.True(t, tt.wantDate.Equal(got.Date), "want %s, got %s", tt.wantDate, got.Date)
			assert.Equal(t, tt.wantDays, got.DaysUntil)
			assert.Equal(t, tt.wantYears, got.Years)
		})
	}
}

func TestProject_UsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	// 02:00 UTC on the 26th is still the 25th in Sao Paulo (UTC-3).
	now := time.Date(2024, 10, 26, 2, 0, 0, 0, time.UTC)
	p := Project(day(2022, 10, 26), now, loc)

	require.Equal(t, 2024, p.NextAnniversary.Date.Year())
	assert.Equal(t, 26, p.NextAnniversary.Date.Day())
	assert.Equal(t, 1, p.NextAnniversary.DaysUntil)
	assert.True(t, p.TimeTogether.Started)
}
