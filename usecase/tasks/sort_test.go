package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zachfleeman/tasuki/domain"
)

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func titles(list []domain.Task) []string {
	out := make([]string, len(list))
	for i, task := range list {
		out[i] = task.Title
	}
	return out
}

func TestSortBucketsByDueDate(t *testing.T) {
	today := *day(t, "2025-03-10")

	list := []domain.Task{
		{Title: "no due"},
		{Title: "future", Due: day(t, "2025-03-20")},
		{Title: "today", Due: day(t, "2025-03-10")},
		{Title: "overdue", Due: day(t, "2025-03-01")},
	}
	Sort(list, today)

	assert.Equal(t, []string{"overdue", "today", "future", "no due"}, titles(list))
}

func TestSortAscendingDueWithinBucket(t *testing.T) {
	today := *day(t, "2025-03-10")

	list := []domain.Task{
		{Title: "later", Due: day(t, "2025-03-25")},
		{Title: "sooner", Due: day(t, "2025-03-12")},
	}
	Sort(list, today)

	assert.Equal(t, []string{"sooner", "later"}, titles(list))
}

func TestSortPriorityBreaksDueTies(t *testing.T) {
	today := *day(t, "2025-03-10")
	due := day(t, "2025-03-15")

	list := []domain.Task{
		{Title: "none", Due: due, Priority: domain.PriorityNone},
		{Title: "high", Due: due, Priority: domain.PriorityHigh},
		{Title: "low", Due: due, Priority: domain.PriorityLow},
		{Title: "medium", Due: due, Priority: domain.PriorityMedium},
	}
	Sort(list, today)

	assert.Equal(t, []string{"high", "medium", "low", "none"}, titles(list))
}

func TestSortTitleBreaksRemainingTies(t *testing.T) {
	today := *day(t, "2025-03-10")
	due := day(t, "2025-03-15")

	list := []domain.Task{
		{Title: "bravo", Due: due, Priority: domain.PriorityHigh},
		{Title: "alpha", Due: due, Priority: domain.PriorityHigh},
	}
	Sort(list, today)

	assert.Equal(t, []string{"alpha", "bravo"}, titles(list))
}

func TestSortOverduePrecedesNoDueDate(t *testing.T) {
	today := *day(t, "2025-03-10")

	list := []domain.Task{
		{Title: "floating", Priority: domain.PriorityHigh},
		{Title: "yesterday", Due: day(t, "2025-03-09")},
	}
	Sort(list, today)

	assert.Equal(t, []string{"yesterday", "floating"}, titles(list))
}
