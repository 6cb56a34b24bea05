package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Task struct {
	ID          int        `json:"id" yaml:"id" db:"id" validate:"gt=0"`
	Title       string     `json:"title" yaml:"title" db:"title" validate:"required"`
	Description string     `json:"description" yaml:"description" db:"description"`
	Category    Category   `json:"category" yaml:"category" db:"category" validate:"required,oneof=work personal study health other"`
	Priority    Priority   `json:"priority" yaml:"priority" db:"priority" validate:"required,oneof=high medium low"`
	Status      Status     `json:"status" yaml:"status" db:"status" validate:"required,oneof=pending in_progress completed"`
	DueDate     *Date      `json:"due_date,omitempty" yaml:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty" db:"completed_at"`
}

// Snapshot - единица сохранения: вся коллекция и счётчик идентификаторов
type Snapshot struct {
	NextID int    `json:"next_id" yaml:"next_id"`
	Tasks  []Task `json:"tasks" yaml:"tasks"`
}

var (
	ErrCompletedAtMismatch = errors.New("completed_at не согласован со статусом")
	ErrMissingCreatedAt    = errors.New("не задан created_at")
	ErrDuplicateID         = errors.New("повторяющийся идентификатор задачи")
)

var validate = validator.New()

// New создаёт задачу в статусе pending. Пустой заголовок здесь не проверяется.
func New(id int, title, description string, category Category, priority Priority, dueDate *Date, now time.Time) Task {
	return Task{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      StatusPending,
		DueDate:     dueDate.clone(),
		CreatedAt:   now,
		CompletedAt: nil,
	}
}

// Start переводит pending -> in_progress, в остальных статусах ничего не делает
func (t *Task) Start() {
	if t.Status == StatusPending {
		t.Status = StatusInProgress
	}
}

// Complete завершает задачу из любого статуса, повторный вызов перезаписывает completed_at
func (t *Task) Complete(at time.Time) {
	t.Status = StatusCompleted
	t.CompletedAt = &at
}

func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(DateOf(now.Local()))
}

func (t Task) Clone() Task {
	c := t
	c.DueDate = t.DueDate.clone()
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return c
}

func (t Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("задача %d: %w", t.ID, err)
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("задача %d: пустой заголовок", t.ID)
	}
	if t.CreatedAt.IsZero() {
		return fmt.Errorf("задача %d: %w", t.ID, ErrMissingCreatedAt)
	}
	if (t.Status == StatusCompleted) != (t.CompletedAt != nil) {
		return fmt.Errorf("задача %d: %w", t.ID, ErrCompletedAtMismatch)
	}
	return nil
}

// Validate проверяет каждую задачу и уникальность идентификаторов
func (s Snapshot) Validate() error {
	if s.NextID < 0 {
		return fmt.Errorf("отрицательный next_id: %d", s.NextID)
	}
	seen := make(map[int]struct{}, len(s.Tasks))
	for _, t := range s.Tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("задача %d: %w", t.ID, ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

func (s Snapshot) MaxID() int {
	maxID := 0
	for _, t := range s.Tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID
}

func (s Snapshot) Clone() Snapshot {
	c := Snapshot{NextID: s.NextID, Tasks: make([]Task, len(s.Tasks))}
	for i, t := range s.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}
