package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestIsActiveWhenPositionOpen(t *testing.T) {
	plan := SymbolSyncPlan{Active: true}
	assert.True(t, IsActive(plan, d(2024, 6, 1)))
}

func TestIsActiveWithinGracePeriod(t *testing.T) {
	plan := SymbolSyncPlan{Active: false, GraceExpiry: d(2024, 6, 15)}
	assert.True(t, IsActive(plan, d(2024, 6, 10)))
	assert.False(t, IsActive(plan, d(2024, 6, 16)))
}

func TestIsActiveWithNoGraceExpirySetIsInactive(t *testing.T) {
	plan := SymbolSyncPlan{Active: false}
	assert.False(t, IsActive(plan, d(2024, 6, 1)))
}

func TestComputeWindowUsesBufferBeforeFirstActivity(t *testing.T) {
	plan := SymbolSyncPlan{FirstActivityDate: d(2024, 1, 1)}
	inputs := PlanningInputs{BufferDays: 45, MinLookbackDays: 5, Today: d(2024, 6, 1)}

	w := ComputeWindow(plan, inputs)
	assert.Equal(t, d(2023, 11, 17), w.Start)
	assert.Equal(t, d(2024, 6, 1), w.End)
}

func TestComputeWindowStartsFromLastSyncedWhenLater(t *testing.T) {
	plan := SymbolSyncPlan{FirstActivityDate: d(2023, 1, 1), LastSyncedDate: d(2024, 5, 1)}
	inputs := PlanningInputs{BufferDays: 45, MinLookbackDays: 5, Today: d(2024, 6, 1)}

	w := ComputeWindow(plan, inputs)
	assert.Equal(t, d(2024, 5, 1), w.Start)
}

func TestComputeWindowBacksOffToMinLookback(t *testing.T) {
	plan := SymbolSyncPlan{FirstActivityDate: d(2023, 1, 1), LastSyncedDate: d(2024, 5, 30)}
	inputs := PlanningInputs{BufferDays: 45, MinLookbackDays: 5, Today: d(2024, 6, 1)}

	w := ComputeWindow(plan, inputs)
	assert.Equal(t, d(2024, 5, 27), w.Start)
}

func TestDetermineModeNoneWhenInactive(t *testing.T) {
	plan := SymbolSyncPlan{Active: false}
	assert.Equal(t, ModeNone, DetermineMode(plan, d(2024, 6, 1), 0))
}

func TestDetermineModeBackfillWhenForced(t *testing.T) {
	plan := SymbolSyncPlan{Active: true}
	assert.Equal(t, ModeBackfillHistory, DetermineMode(plan, d(2024, 6, 1), 365))
}

func TestDetermineModeIncrementalDefault(t *testing.T) {
	plan := SymbolSyncPlan{Active: true}
	assert.Equal(t, ModeIncremental, DetermineMode(plan, d(2024, 6, 1), 0))
}
