package tasks

import (
	"sort"
	"time"

	"github.com/zachfleeman/tasuki/domain"
)

// Sort orders tasks deterministically: overdue first, then due today, then
// due in the future, then no due date; inside a bucket ascending by due
// date, then descending by priority, then ascending by title. "Overdue" and
// "today" are judged against the given calendar date.
func Sort(list []domain.Task, today time.Time) {
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]

		if sa, sb := dueBucket(a.Due, todayStart), dueBucket(b.Due, todayStart); sa != sb {
			return sa < sb
		}

		switch {
		case a.Due != nil && b.Due != nil:
			if !a.Due.Equal(*b.Due) {
				return a.Due.Before(*b.Due)
			}
		case a.Due != nil:
			return true
		case b.Due != nil:
			return false
		}

		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}

		return a.Title < b.Title
	})
}

// dueBucket ranks overdue < today < future < none.
func dueBucket(due *time.Time, todayStart time.Time) int {
	switch {
	case due == nil:
		return 3
	case due.Before(todayStart):
		return 0
	case due.Before(todayStart.AddDate(0, 0, 1)):
		return 1
	default:
		return 2
	}
}
