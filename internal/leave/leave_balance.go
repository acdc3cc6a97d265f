package leave

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Allocations maps a leave type to the days granted per year.
type Allocations map[string]float64

// DefaultAllocations keeps MATERNITY and PATERNITY explicit at zero; HR grants
// those by hand.
func DefaultAllocations() Allocations {
	return Allocations{
		LeaveTypeAnnual:    21,
		LeaveTypeSick:      10,
		LeaveTypePersonal:  5,
		LeaveTypeEmergency: 3,
		LeaveTypeMaternity: 0,
		LeaveTypePaternity: 0,
	}
}

// ParseAllocations reads "ANNUAL=21,SICK=10". Types not listed keep their
// default. An empty string yields the defaults.
func ParseAllocations(raw string) (Allocations, error) {
	out := DefaultAllocations()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("leave allocations: %q is not TYPE=DAYS", pair)
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if !IsValidLeaveType(name) {
			return nil, fmt.Errorf("leave allocations: unknown leave type %q", name)
		}
		days, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("leave allocations: invalid days for %s: %q", name, value)
		}
		out[name] = days
	}
	return out, nil
}

// RolloverPolicy decides the opening total of a new year's balance given the
// previous year's row for the same type, which may be nil.
type RolloverPolicy interface {
	OpeningTotal(allocation float64, previous *LeaveBalance) float64
}

// NoCarryOver starts every year from the allocation.
type NoCarryOver struct{}

func (NoCarryOver) OpeningTotal(allocation float64, _ *LeaveBalance) float64 {
	return allocation
}

// CarryOver adds up to Max unused days from the previous year.
type CarryOver struct {
	Max float64
}

func (p CarryOver) OpeningTotal(allocation float64, previous *LeaveBalance) float64 {
	if previous == nil || previous.Remaining <= 0 || p.Max <= 0 {
		return allocation
	}
	return allocation + math.Min(previous.Remaining, p.Max)
}

// NewRolloverPolicy returns CarryOver when maxCarry is positive.
func NewRolloverPolicy(maxCarry float64) RolloverPolicy {
	if maxCarry > 0 {
		return CarryOver{Max: maxCarry}
	}
	return NoCarryOver{}
}

// CountDays returns 0.5 for a half day, otherwise the inclusive day span.
func CountDays(start, end time.Time, halfDay bool) float64 {
	if halfDay {
		return 0.5
	}
	return math.Ceil(end.Sub(start).Hours()/24) + 1
}

// Overlaps reports whether two inclusive date ranges share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
