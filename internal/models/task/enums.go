package task

import (
	"fmt"
	"strings"
)

type Status string
type Category string
type Priority string

const StatusPending Status = "pending"
const StatusInProgress Status = "in_progress"
const StatusCompleted Status = "completed"

const CategoryWork Category = "work"
const CategoryPersonal Category = "personal"
const CategoryStudy Category = "study"
const CategoryHealth Category = "health"
const CategoryOther Category = "other"

const PriorityHigh Priority = "high"
const PriorityMedium Priority = "medium"
const PriorityLow Priority = "low"

// порядок важен: статистика и вывод CLI идут в этом порядке
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryStudy, CategoryHealth, CategoryOther}
}

func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

func (s Status) Valid() bool {
	for _, v := range Statuses() {
		if v == s {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	for _, v := range Categories() {
		if v == c {
			return true
		}
	}
	return false
}

func (p Priority) Valid() bool {
	for _, v := range Priorities() {
		if v == p {
			return true
		}
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

func (c Category) Label() string {
	switch c {
	case CategoryWork:
		return "Work"
	case CategoryPersonal:
		return "Personal"
	case CategoryStudy:
		return "Study"
	case CategoryHealth:
		return "Health"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}

func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

func ParseStatus(s string) (Status, error) {
	st := Status(normalize(s))
	if !st.Valid() {
		return "", fmt.Errorf("неизвестный статус %q", s)
	}
	return st, nil
}

func ParseCategory(s string) (Category, error) {
	c := Category(normalize(s))
	if !c.Valid() {
		return "", fmt.Errorf("неизвестная категория %q", s)
	}
	return c, nil
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(normalize(s))
	if !p.Valid() {
		return "", fmt.Errorf("неизвестный приоритет %q", s)
	}
	return p, nil
}
