package leave_test

import (
	"testing"
	"time"

	"go-leave/internal/leave"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCountDays(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		halfDay bool
		want    float64
	}{
		{name: "single day", start: "2026-03-10", end: "2026-03-10", want: 1},
		{name: "inclusive span", start: "2026-03-10", end: "2026-03-12", want: 3},
		{name: "across month end", start: "2026-02-27", end: "2026-03-02", want: 4},
		{name: "half day ignores span", start: "2026-03-10", end: "2026-03-14", halfDay: true, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, leave.CountDays(day(tt.start), day(tt.end), tt.halfDay))
		})
	}
}

func TestOverlaps(t *testing.T) {
	assert.True(t, leave.Overlaps(day("2024-01-01"), day("2024-01-03"), day("2024-01-02"), day("2024-01-04")))
	assert.True(t, leave.Overlaps(day("2024-01-01"), day("2024-01-03"), day("2024-01-03"), day("2024-01-05")))
	assert.False(t, leave.Overlaps(day("2024-01-01"), day("2024-01-03"), day("2024-01-04"), day("2024-01-05")))
}

func TestParseAllocations(t *testing.T) {
	t.Run("empty gives defaults with explicit zero rows", func(t *testing.T) {
		got, err := leave.ParseAllocations("")
		require.NoError(t, err)
		assert.Equal(t, 21.0, got[leave.LeaveTypeAnnual])
		assert.Equal(t, 10.0, got[leave.LeaveTypeSick])
		assert.Equal(t, 5.0, got[leave.LeaveTypePersonal])
		assert.Equal(t, 3.0, got[leave.LeaveTypeEmergency])

		maternity, ok := got[leave.LeaveTypeMaternity]
		assert.True(t, ok)
		assert.Zero(t, maternity)
		_, ok = got[leave.LeaveTypePaternity]
		assert.True(t, ok)
	})

	t.Run("overrides listed types", func(t *testing.T) {
		got, err := leave.ParseAllocations(" annual=25, MATERNITY=90 ")
		require.NoError(t, err)
		assert.Equal(t, 25.0, got[leave.LeaveTypeAnnual])
		assert.Equal(t, 90.0, got[leave.LeaveTypeMaternity])
		assert.Equal(t, 10.0, got[leave.LeaveTypeSick])
	})

	for _, raw := range []string{"ANNUAL", "VACATION=3", "SICK=-1", "SICK=many"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := leave.ParseAllocations(raw)
			assert.Error(t, err)
		})
	}
}

func TestRolloverPolicy(t *testing.T) {
	prev := &leave.LeaveBalance{Total: 21, Used: 13, Remaining: 8}

	assert.Equal(t, 21.0, leave.NoCarryOver{}.OpeningTotal(21, prev))
	assert.Equal(t, 26.0, leave.CarryOver{Max: 5}.OpeningTotal(21, prev))
	assert.Equal(t, 29.0, leave.CarryOver{Max: 10}.OpeningTotal(21, prev))
	assert.Equal(t, 21.0, leave.CarryOver{Max: 5}.OpeningTotal(21, nil))

	assert.IsType(t, leave.NoCarryOver{}, leave.NewRolloverPolicy(0))
	assert.Equal(t, leave.CarryOver{Max: 3}, leave.NewRolloverPolicy(3))
}
