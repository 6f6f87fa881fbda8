package service

import (
	"cmp"
	"slices"
	"strings"

	"todoshare/internal/model"
)

type TaskSort string

const (
	SortByName     TaskSort = "name"
	SortByPriority TaskSort = "priority"
	SortByDueDate  TaskSort = "due_date"
)

// TaskQuery narrows and reorders a task list. Search matches the name
// case-insensitively or the due date as YYYY-MM-DD. Without SortBy the
// list keeps the order it was loaded in.
type TaskQuery struct {
	Search string
	SortBy TaskSort
	Desc   bool
}

func (q TaskQuery) Validate() error {
	switch q.SortBy {
	case "", SortByName, SortByPriority, SortByDueDate:
		return nil
	}
	return validation("sort must be name, priority or due_date")
}

// Apply returns the tasks matching Search, sorted by SortBy. Ties keep their
// loaded order. The input slice is not modified.
func (q TaskQuery) Apply(tasks []model.Task) []model.Task {
	search := strings.TrimSpace(q.Search)
	lower := strings.ToLower(search)
	result := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if search == "" ||
			strings.Contains(strings.ToLower(t.Name), lower) ||
			strings.Contains(t.DueDate.Format("2006-01-02"), search) {
			result = append(result, t)
		}
	}

	if compare := q.comparator(); compare != nil {
		slices.SortStableFunc(result, func(a, b model.Task) int {
			if q.Desc {
				return compare(b, a)
			}
			return compare(a, b)
		})
	}
	return result
}

func (q TaskQuery) comparator() func(a, b model.Task) int {
	switch q.SortBy {
	case SortByName:
		return func(a, b model.Task) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortByPriority:
		// Ascending puts high priority first.
		return func(a, b model.Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	case SortByDueDate:
		return func(a, b model.Task) int {
			return a.DueDate.Compare(b.DueDate)
		}
	}
	return nil
}
