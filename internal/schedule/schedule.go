// Package schedule decides whether the current time falls inside one of the
// configured posting slots. The external trigger fires more often than posts
// are wanted, so runs outside every slot are skipped.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultGrace is how long after a slot start a run still counts.
const DefaultGrace = 15 * time.Minute

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = 7 * minutesPerDay
)

// Slot is a weekly posting slot in UTC.
type Slot struct {
	Day    time.Weekday
	Minute int // minutes since midnight
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:%02d", s.Day, s.Minute/60, s.Minute%60)
}

func (s Slot) weekMinute() int {
	return int(s.Day)*minutesPerDay + s.Minute
}

// ParseSlot parses a weekday name ("monday", "Mon") and a "HH:MM" time.
func ParseSlot(day, clock string) (Slot, error) {
	wd, err := parseWeekday(day)
	if err != nil {
		return Slot{}, err
	}
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return Slot{}, fmt.Errorf("parse time %q: want HH:MM", clock)
	}
	return Slot{Day: wd, Minute: t.Hour()*60 + t.Minute()}, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if s == name || s == name[:3] {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Guard holds the allowed slots for one platform.
type Guard struct {
	slots []Slot
	grace time.Duration
}

// NewGuard creates a guard. A zero grace uses DefaultGrace. A guard with no
// slots allows every time.
func NewGuard(slots []Slot, grace time.Duration) (*Guard, error) {
	if grace < 0 {
		return nil, errors.New("schedule: grace must not be negative")
	}
	if grace == 0 {
		grace = DefaultGrace
	}
	for _, s := range slots {
		if s.Minute < 0 || s.Minute >= minutesPerDay {
			return nil, fmt.Errorf("schedule: slot minute %d out of range", s.Minute)
		}
	}
	return &Guard{slots: slots, grace: grace}, nil
}

// Slots returns the configured slots.
func (g *Guard) Slots() []Slot {
	return g.slots
}

// Allow reports whether now is within grace after a slot start. The window
// may run past midnight into the next day.
func (g *Guard) Allow(now time.Time) bool {
	if len(g.slots) == 0 {
		return true
	}
	_, ok := g.Match(now)
	return ok
}

// Match returns the slot that now falls into.
func (g *Guard) Match(now time.Time) (Slot, bool) {
	cur := weekMinute(now)
	graceMin := int(g.grace / time.Minute)
	for _, s := range g.slots {
		diff := (cur - s.weekMinute() + minutesPerWeek) % minutesPerWeek
		if diff <= graceMin {
			return s, true
		}
	}
	return Slot{}, false
}

// Next returns the first slot start strictly after now, in UTC. It reports
// false when no slots are configured.
func (g *Guard) Next(now time.Time) (time.Time, bool) {
	if len(g.slots) == 0 {
		return time.Time{}, false
	}
	now = now.UTC()
	base := now.Truncate(time.Minute)
	cur := weekMinute(now)

	best := -1
	for _, s := range g.slots {
		ahead := (s.weekMinute() - cur + minutesPerWeek) % minutesPerWeek
		if ahead == 0 {
			ahead = minutesPerWeek
		}
		if best < 0 || ahead < best {
			best = ahead
		}
	}
	return base.Add(time.Duration(best) * time.Minute), true
}

func weekMinute(t time.Time) int {
	t = t.UTC()
	return int(t.Weekday())*minutesPerDay + t.Hour()*60 + t.Minute()
}
