package inmemory

import (
	"context"
	"sync"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"go.uber.org/zap"
)

// TaskStorage держит копию последнего сохранённого снимка, ничего не пишет на диск
type TaskStorage struct {
	snapshot *task.Snapshot
	mtx      *sync.RWMutex
	saves    int
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		mtx: &sync.RWMutex{},
	}
}

// NewTaskStorageWith создаёт хранилище, уже содержащее снимок
func NewTaskStorageWith(snapshot task.Snapshot) *TaskStorage {
	c := snapshot.Clone()
	return &TaskStorage{
		snapshot: &c,
		mtx:      &sync.RWMutex{},
	}
}

func (s *TaskStorage) Load(ctx context.Context) (*task.Snapshot, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if s.snapshot == nil {
		return nil, repo.ErrNotFound
	}
	c := s.snapshot.Clone()
	return &c, nil
}

func (s *TaskStorage) Save(ctx context.Context, snapshot *task.Snapshot) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	c := snapshot.Clone()
	s.snapshot = &c
	s.saves++

	logger.Debug("Repository: Снимок сохранён в памяти", zap.Int("tasks", len(c.Tasks)))
	return nil
}

func (s *TaskStorage) Exists(ctx context.Context) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.snapshot != nil, nil
}

func (s *TaskStorage) Delete(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.snapshot = nil
	return nil
}

// Saves - сколько раз вызывался Save
func (s *TaskStorage) Saves() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.saves
}
