package service

import (
	"context"

	"taskManager/internal/models/task"
)

// TaskRepository хранит снимок коллекции целиком
type TaskRepository interface {
	// Load возвращает repository.ErrNotFound, если сохранений ещё не было,
	// и repository.ErrCorruptData, если содержимое не разбирается
	Load(context.Context) (*task.Snapshot, error)
	Save(context.Context, *task.Snapshot) error
	Exists(context.Context) (bool, error)
	Delete(context.Context) error
}
