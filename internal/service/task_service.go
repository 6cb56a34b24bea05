package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики.
// Сервис - единственный владелец коллекции: каждое изменение сохраняет снимок целиком.

type TaskService struct {
	repo   TaskRepository
	mtx    *sync.RWMutex
	tasks  []task.Task
	nextID int
	clock  func() time.Time
}

type Option func(*TaskService)

// WithClock подменяет источник текущего времени
func WithClock(clock func() time.Time) Option {
	return func(s *TaskService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewTaskService загружает коллекцию из хранилища.
// Отсутствие данных - пустая коллекция, повреждённые данные - ошибка CORRUPT_DATA.
func NewTaskService(ctx context.Context, repository TaskRepository, opts ...Option) (*TaskService, error) {
	s := &TaskService{
		repo:   repository,
		mtx:    &sync.RWMutex{},
		tasks:  []task.Task{},
		nextID: 1,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snapshot, err := repository.Load(ctx)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		logger.Info("Service: Сохранённых задач нет, начинаем с пустого списка")
		return s, nil
	case errors.Is(err, repo.ErrCorruptData):
		logger.Error("Service: Данные хранилища повреждены", err)
		return nil, NewCorruptData(err)
	case err != nil:
		logger.Error("Service: Ошибка загрузки задач", err)
		return nil, NewIOFailure("загрузка", err)
	}

	if err := snapshot.Validate(); err != nil {
		logger.Error("Service: Загруженные задачи не прошли проверку", err)
		return nil, NewCorruptData(err)
	}

	// id MaxInt не оставляет места для следующего: счётчик переполнился бы
	if snapshot.MaxID() == math.MaxInt {
		err := fmt.Errorf("задача %d: идентификатор вне допустимого диапазона", math.MaxInt)
		logger.Error("Service: Загруженные задачи не прошли проверку", err)
		return nil, NewCorruptData(err)
	}

	s.tasks = snapshot.Tasks
	if s.tasks == nil {
		s.tasks = []task.Task{}
	}
	s.nextID = max(snapshot.NextID, snapshot.MaxID()+1, 1)

	logger.Info("Service: Задачи загружены",
		zap.Int("count", len(s.tasks)),
		zap.Int("next_id", s.nextID),
	)
	return s, nil
}

// now - время с точностью до микросекунды в UTC: так его без потерь хранят все хранилища
func (s *TaskService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

func (s *TaskService) CreateTask(ctx context.Context, title, description string, category task.Category, priority task.Priority, dueDate *task.Date) (*task.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, NewValidationError("title", "заголовок не может быть пустым")
	}
	if !category.Valid() {
		return nil, NewValidationError("category", fmt.Sprintf("неизвестная категория %q", category))
	}
	if !priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("неизвестный приоритет %q", priority))
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.nextID == math.MaxInt {
		logger.Error("Service: Исчерпан диапазон идентификаторов", nil, zap.Int("next_id", s.nextID))
		return nil, NewIDExhausted(s.nextID)
	}

	created := task.New(s.nextID, title, description, category, priority, dueDate, s.now())
	s.nextID++
	s.tasks = append(s.tasks, created)

	logger.Info("Service: Задача создана", zap.Int("id", created.ID))

	result := created.Clone()
	// при ошибке сохранения задача остаётся в памяти, вызывающий получает и её, и ошибку
	if err := s.persist(ctx); err != nil {
		return &result, err
	}
	return &result, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.Int("target_id", id))
		return nil, NewNotFound(id)
	}
	result := s.tasks[idx].Clone()
	return &result, nil
}

// GetAllTasks возвращает копии всех задач в порядке добавления
func (s *TaskService) GetAllTasks(ctx context.Context) []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.filter(func(task.Task) bool { return true })
}

func (s *TaskService) UpdateTask(ctx context.Context, id int, options ...task.TaskOption) (*task.Task, error) {
	patch := task.NewPatch(options...)
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, "обновление", func(t *task.Task) {
		patch.Apply(t)
	})
}

func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.Int("target_id", id))
		return NewNotFound(id)
	}

	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	logger.Info("Service: Задача удалена", zap.Int("id", id))

	return s.persist(ctx)
}

// StartTask переводит pending в in_progress; для остальных статусов ничего не меняет
func (s *TaskService) StartTask(ctx context.Context, id int) (*task.Task, error) {
	return s.mutate(ctx, id, "запуск", func(t *task.Task) {
		t.Start()
	})
}

// CompleteTask завершает задачу из любого статуса
func (s *TaskService) CompleteTask(ctx context.Context, id int) (*task.Task, error) {
	return s.mutate(ctx, id, "завершение", func(t *task.Task) {
		t.Complete(s.now())
	})
}

func (s *TaskService) GetTasksByStatus(ctx context.Context, status task.Status) ([]task.Task, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", status))
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.filter(func(t task.Task) bool { return t.Status == status }), nil
}

func (s *TaskService) GetTasksByCategory(ctx context.Context, category task.Category) ([]task.Task, error) {
	if !category.Valid() {
		return nil, NewValidationError("category", fmt.Sprintf("неизвестная категория %q", category))
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.filter(func(t task.Task) bool { return t.Category == category }), nil
}

func (s *TaskService) GetTasksByPriority(ctx context.Context, priority task.Priority) ([]task.Task, error) {
	if !priority.Valid() {
		return nil, NewValidationError("priority", fmt.Sprintf("неизвестный приоритет %q", priority))
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.filter(func(t task.Task) bool { return t.Priority == priority }), nil
}

func (s *TaskService) GetOverdueTasks(ctx context.Context) []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	now := s.now()
	return s.filter(func(t task.Task) bool { return t.IsOverdue(now) })
}

func (s *TaskService) GetStatistics(ctx context.Context) Statistics {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.computeStatistics()
}

// Reset удаляет все задачи вместе с хранилищем, счётчик идентификаторов начинается заново
func (s *TaskService) Reset(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.repo.Delete(ctx); err != nil {
		logger.Error("Service: Ошибка удаления хранилища", err)
		return NewIOFailure("сброс", err)
	}

	s.tasks = []task.Task{}
	s.nextID = 1
	logger.Warn("Service: Все задачи удалены")
	return nil
}

func (s *TaskService) mutate(ctx context.Context, id int, op string, change func(*task.Task)) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.Int("target_id", id))
		return nil, NewNotFound(id)
	}

	change(&s.tasks[idx])
	logger.Info("Service: Задача изменена", zap.String("op", op), zap.Int("id", id))

	result := s.tasks[idx].Clone()
	if err := s.persist(ctx); err != nil {
		return &result, err
	}
	return &result, nil
}

// persist вызывается под блокировкой записи. Изменение в памяти при ошибке не откатывается.
func (s *TaskService) persist(ctx context.Context) error {
	snapshot := task.Snapshot{
		NextID: s.nextID,
		Tasks:  make([]task.Task, len(s.tasks)),
	}
	for i, t := range s.tasks {
		snapshot.Tasks[i] = t.Clone()
	}

	if err := s.repo.Save(ctx, &snapshot); err != nil {
		logger.Error("Service: Не удалось сохранить задачи", err, zap.Int("count", len(snapshot.Tasks)))
		return NewIOFailure("сохранение", err)
	}
	return nil
}

func (s *TaskService) indexOf(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskService) filter(keep func(task.Task) bool) []task.Task {
	res := []task.Task{}
	for _, t := range s.tasks {
		if keep(t) {
			res = append(res, t.Clone())
		}
	}
	return res
}

func validatePatch(p task.Patch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("title", "заголовок не может быть пустым")
	}
	if p.Category != nil && !p.Category.Valid() {
		return NewValidationError("category", fmt.Sprintf("неизвестная категория %q", *p.Category))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewValidationError("priority", fmt.Sprintf("неизвестный приоритет %q", *p.Priority))
	}
	return nil
}
