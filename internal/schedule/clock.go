// Package schedule derives the bookable walk slots of a calendar day.
//
// All instants are computed in one configured location and keyed by their
// RFC 3339 UTC representation, so the same slot has the same key no matter
// which timezone the client renders it in.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"walk-booking/pkg/apperr"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = apperr.New(apperr.KindInvalidDate, "date must use the YYYY-MM-DD format")

type Config struct {
	WindowStartHour int
	WindowEndHour   int
	IntervalMinutes int
	Location        *time.Location
}

func (c Config) Validate() error {
	if c.IntervalMinutes <= 0 || c.IntervalMinutes > 24*60 {
		return fmt.Errorf("slot interval %d minutes out of range", c.IntervalMinutes)
	}
	if c.WindowStartHour < 0 || c.WindowEndHour > 24 || c.WindowStartHour >= c.WindowEndHour {
		return fmt.Errorf("slot window %02d:00-%02d:00 is empty", c.WindowStartHour, c.WindowEndHour)
	}
	if (c.WindowEndHour-c.WindowStartHour)*60%c.IntervalMinutes != 0 {
		return errors.New("slot window is not a whole number of intervals")
	}
	return nil
}

type Slot struct {
	Key    string
	Start  time.Time
	End    time.Time
	IsPast bool
}

type Clock struct {
	cfg Config
}

func NewClock(cfg Config) (*Clock, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Clock{cfg: cfg}, nil
}

// Key is the canonical storage key of a slot starting at t.
func Key(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (c *Clock) SlotDuration() time.Duration {
	return time.Duration(c.cfg.IntervalMinutes) * time.Minute
}

func (c *Clock) Location() *time.Location {
	return c.cfg.Location
}

func (c *Clock) slotsPerDay() int {
	return (c.cfg.WindowEndHour - c.cfg.WindowStartHour) * 60 / c.cfg.IntervalMinutes
}

func (c *Clock) parseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, c.cfg.Location)
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindInvalidDate, ErrInvalidDate.Message, err)
	}
	return d, nil
}

// wallClock builds the instant at the given minute of the local day. A minute
// inside a daylight saving gap lands on an instant that another minute of the
// day also maps to.
func (c *Clock) wallClock(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minute, 0, 0, c.cfg.Location)
}

// DayBounds returns the [from, to) instants of the booking window on date.
func (c *Clock) DayBounds(date string) (time.Time, time.Time, error) {
	day, err := c.parseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return c.wallClock(day, c.cfg.WindowStartHour*60), c.wallClock(day, c.cfg.WindowEndHour*60), nil
}

// SlotsFor lists the slots of date in start order, flagging those that begin
// before now. Slots are laid out on the local wall clock, so a day with a
// daylight saving shift has one slot fewer or more than usual.
func (c *Clock) SlotsFor(date string, now time.Time) ([]Slot, error) {
	day, err := c.parseDate(date)
	if err != nil {
		return nil, err
	}

	n := c.slotsPerDay()
	slots := make([]Slot, 0, n)
	var prev time.Time
	for i := 0; i < n; i++ {
		start := c.wallClock(day, c.cfg.WindowStartHour*60+i*c.cfg.IntervalMinutes)
		// skipped wall times collapse onto the next real slot
		if i > 0 && !start.After(prev) {
			continue
		}
		prev = start
		slots = append(slots, Slot{
			Key:    Key(start),
			Start:  start.UTC(),
			End:    start.Add(c.SlotDuration()).UTC(),
			IsPast: start.Before(now),
		})
	}
	return slots, nil
}

// Align reports whether t is the start of a slot in the daily window.
func (c *Clock) Align(t time.Time) error {
	local := t.In(c.cfg.Location)
	if local.Second() != 0 || local.Nanosecond() != 0 {
		return apperr.ErrInvalidSlotAlignment
	}

	minute := local.Hour()*60 + local.Minute()
	if minute < c.cfg.WindowStartHour*60 || minute >= c.cfg.WindowEndHour*60 {
		return apperr.New(apperr.KindInvalidSlotAlignment, "start time is outside booking hours")
	}
	if (minute-c.cfg.WindowStartHour*60)%c.cfg.IntervalMinutes != 0 {
		return apperr.New(apperr.KindInvalidSlotAlignment,
			fmt.Sprintf("start time must be on a %d-minute interval", c.cfg.IntervalMinutes))
	}
	// the repeated hour of a fall-back shift is not a listed slot
	if !c.wallClock(local, minute).Equal(t) {
		return apperr.New(apperr.KindInvalidSlotAlignment, "start time is not a listed slot")
	}
	return nil
}
