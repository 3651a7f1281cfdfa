package application

import (
	"math"
	"time"
)

// TimeTogether is the elapsed time since the anniversary instant, split into
// whole days and the remaining hours, minutes and seconds. Started is false
// while the anniversary lies in the future, in which case every field is zero.
type TimeTogether struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
	Started bool
}

// NextAnniversary is the next occurrence of the anniversary's month and day.
// Years is the anniversary being celebrated on Date.
type NextAnniversary struct {
	Date      time.Time
	DaysUntil int
	Years     int
}

// Projection bundles both dashboard widgets for one (anniversary, now) pair.
type Projection struct {
	TimeTogether    TimeTogether
	NextAnniversary NextAnniversary
}

// Project computes the widgets for a calendar date observed at now in loc.
func Project(date, now time.Time, loc *time.Location) Projection {
	return Projection{
		TimeTogether:    ComputeTimeTogether(date, now, loc),
		NextAnniversary: ComputeNextAnniversary(date, now, loc),
	}
}

// ComputeTimeTogether measures from midnight of date in loc to now.
func ComputeTimeTogether(date, now time.Time, loc *time.Location) TimeTogether {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	if now.Before(start) {
		return TimeTogether{}
	}

	d := now.Sub(start)
	return TimeTogether{
		Days:    int64(d / (24 * time.Hour)),
		Hours:   int64(d/time.Hour) % 24,
		Minutes: int64(d/time.Minute) % 60,
		Seconds: int64(d/time.Second) % 60,
		Started: true,
	}
}

// ComputeNextAnniversary finds the next midnight in loc carrying date's month
// and day, counting today's midnight while now has not passed it. February 29
// rolls over to March 1 in non-leap years.
func ComputeNextAnniversary(date, now time.Time, loc *time.Location) NextAnniversary {
	local := now.In(loc)

	year := local.Year()
	next := time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, loc)
	if now.After(next) {
		year++
		next = time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, loc)
	}

	return NextAnniversary{
		Date:      next,
		DaysUntil: int(math.Ceil(next.Sub(now).Hours() / 24)),
		Years:     year - date.Year(),
	}
}
