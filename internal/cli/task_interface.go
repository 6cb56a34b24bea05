package cli

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/service"
)

type TaskService interface {
	CreateTask(ctx context.Context, title, description string, category task.Category, priority task.Priority, dueDate *task.Date) (*task.Task, error)
	GetTaskByID(ctx context.Context, id int) (*task.Task, error)
	GetAllTasks(ctx context.Context) []task.Task
	UpdateTask(ctx context.Context, id int, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, id int) error
	StartTask(ctx context.Context, id int) (*task.Task, error)
	CompleteTask(ctx context.Context, id int) (*task.Task, error)
	GetTasksByStatus(ctx context.Context, status task.Status) ([]task.Task, error)
	GetTasksByCategory(ctx context.Context, category task.Category) ([]task.Task, error)
	GetTasksByPriority(ctx context.Context, priority task.Priority) ([]task.Task, error)
	GetOverdueTasks(ctx context.Context) []task.Task
	GetStatistics(ctx context.Context) service.Statistics
	Reset(ctx context.Context) error
}

var _ TaskService = (*service.TaskService)(nil)
