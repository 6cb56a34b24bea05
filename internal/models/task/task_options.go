package task

// Patch - запрос на изменение: nil означает "не трогать поле".
// Для срока отдельный флаг, чтобы отличать "не трогать" от "убрать срок".
type Patch struct {
	Title       *string
	Description *string
	Category    *Category
	Priority    *Priority
	DueDateSet  bool
	DueDate     *Date
}

type TaskOption func(*Patch)

func WithTitle(title string) TaskOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithDescription(description string) TaskOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

func WithCategory(category Category) TaskOption {
	return func(p *Patch) {
		p.Category = &category
	}
}

func WithPriority(priority Priority) TaskOption {
	return func(p *Patch) {
		p.Priority = &priority
	}
}

func WithDueDate(dueDate Date) TaskOption {
	return func(p *Patch) {
		p.DueDateSet = true
		p.DueDate = &dueDate
	}
}

func WithoutDueDate() TaskOption {
	return func(p *Patch) {
		p.DueDateSet = true
		p.DueDate = nil
	}
}

func NewPatch(options ...TaskOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Priority == nil && !p.DueDateSet
}

// Apply переносит заданные поля в задачу; id, статус и метки времени не меняются
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDateSet {
		t.DueDate = p.DueDate.clone()
	}
}
