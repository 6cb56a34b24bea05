package worker

import (
	"context"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"go.uber.org/zap"
)

// OverdueLister - источник просроченных задач, обычно *service.TaskService
type OverdueLister interface {
	GetOverdueTasks(ctx context.Context) []task.Task
}

// Notifier получает просроченные задачи после каждой проверки, в которой они нашлись
type Notifier func(ctx context.Context, overdue []task.Task)

type OverdueWorker struct {
	tasks     OverdueLister
	notify    Notifier
	interval  time.Duration
	batchSize int
}

func NewOverdueWorker(tasks OverdueLister, notify Notifier, interval *time.Duration, batchSize *int) *OverdueWorker {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = 5 * time.Minute
	} else {
		intervalToSet = *interval
	}

	var batchToSet int
	if batchSize == nil || *batchSize <= 0 {
		batchToSet = 100
	} else {
		batchToSet = *batchSize
	}
	return &OverdueWorker{
		tasks:     tasks,
		notify:    notify,
		interval:  intervalToSet,
		batchSize: batchToSet,
	}
}

func (w *OverdueWorker) Interval() time.Duration {
	return w.interval
}

// Start проверяет задачи сразу и затем с интервалом, пока не отменён ctx
func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Фоновая проверка задач на просроченность", zap.Duration("interval", w.interval))
	w.Check(ctx)

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

// Check возвращает число просроченных задач; уведомление получает не больше batchSize из них
func (w *OverdueWorker) Check(ctx context.Context) int {
	start := time.Now()

	overdue := w.tasks.GetOverdueTasks(ctx)
	total := len(overdue)
	if len(overdue) > w.batchSize {
		overdue = overdue[:w.batchSize]
	}

	if total > 0 && w.notify != nil {
		w.notify(ctx, overdue)
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("overdue", total),
		zap.Int("reported", len(overdue)),
	)
	return total
}
