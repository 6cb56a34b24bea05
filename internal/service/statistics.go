package service

import (
	"taskManager/internal/models/task"
)

type CategoryCount struct {
	Category task.Category `json:"category"`
	Count    int           `json:"count"`
}

type PriorityCount struct {
	Priority task.Priority `json:"priority"`
	Count    int           `json:"count"`
}

type Statistics struct {
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	InProgress int             `json:"in_progress"`
	Pending    int             `json:"pending"`
	Overdue    int             `json:"overdue"`
	ByCategory []CategoryCount `json:"by_category"`
	ByPriority []PriorityCount `json:"by_priority"`
}

// CompletionRate - доля завершённых задач в процентах
func (s Statistics) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) * 100 / float64(s.Total)
}

func (s *TaskService) computeStatistics() Statistics {
	now := s.now()
	stats := Statistics{
		Total:      len(s.tasks),
		ByCategory: make([]CategoryCount, 0, len(task.Categories())),
		ByPriority: make([]PriorityCount, 0, len(task.Priorities())),
	}

	byCategory := make(map[task.Category]int)
	byPriority := make(map[task.Priority]int)

	for _, t := range s.tasks {
		switch t.Status {
		case task.StatusCompleted:
			stats.Completed++
		case task.StatusInProgress:
			stats.InProgress++
		case task.StatusPending:
			stats.Pending++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		byCategory[t.Category]++
		byPriority[t.Priority]++
	}

	for _, c := range task.Categories() {
		stats.ByCategory = append(stats.ByCategory, CategoryCount{Category: c, Count: byCategory[c]})
	}
	for _, p := range task.Priorities() {
		stats.ByPriority = append(stats.ByPriority, PriorityCount{Priority: p, Count: byPriority[p]})
	}
	return stats
}
