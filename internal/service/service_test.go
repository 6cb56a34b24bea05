package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/repository"
	"taskManager/internal/repository/task/file"
	"taskManager/internal/repository/task/inmemory"
	"taskManager/internal/service"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Load(ctx context.Context) (*task.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Snapshot), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, snapshot *task.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockTaskRepository) Exists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func newService(t *testing.T) (*service.TaskService, *inmemory.TaskStorage) {
	t.Helper()
	storage := inmemory.NewTaskStorage()
	svc, err := service.NewTaskService(context.Background(), storage, service.WithClock(fixedClock))
	require.NoError(t, err)
	return svc, storage
}

func addTask(t *testing.T, svc *service.TaskService, title string, due *task.Date) *task.Task {
	t.Helper()
	created, err := svc.CreateTask(context.Background(), title, "", task.CategoryWork, task.PriorityMedium, due)
	require.NoError(t, err)
	return created
}

// TestNewTaskService тестирует загрузку коллекции при старте
func TestNewTaskService(t *testing.T) {
	created := fixedNow
	valid := task.New(3, "Stored", "", task.CategoryPersonal, task.PriorityLow, nil, created)
	completedNoStamp := valid
	completedNoStamp.Status = task.StatusCompleted

	tests := []struct {
		name         string
		setupMock    func(*MockTaskRepository)
		expectedCode string
		expectedLen  int
		expectedNext int
	}{
		{
			name: "no stored data - empty collection",
			setupMock: func(m *MockTaskRepository) {
				m.On("Load", mock.Anything).Return(nil, repository.ErrNotFound)
			},
			expectedLen:  0,
			expectedNext: 1,
		},
		{
			name: "stored data - counter from snapshot",
			setupMock: func(m *MockTaskRepository) {
				m.On("Load", mock.Anything).Return(&task.Snapshot{NextID: 10, Tasks: []task.Task{valid}}, nil)
			},
			expectedLen:  1,
			expectedNext: 10,
		},
		{
			name: "stale counter - continues after max id",
			setupMock: func(m *MockTaskRepository) {
				m.On("Load", mock.Anything).Return(&task.Snapshot{NextID: 0, Tasks: []task.Task{valid}}, nil)
			},
			expectedLen:  1,
			expectedNext: 4,
		},
		{
			name: "corrupt data",
			setupMock: func(m *MockTaskRepository) {
				m.On("Load", mock.Anything).Return(nil, repository.ErrCorruptData)
			},
			expectedCode: service.CodeCorruptData,
		},
		{
			name: "invalid snapshot - duplicate ids",
			setupMock: func(m *MockTaskRepository) {
				m.On("Load", mock.Anything).Return(&task.Snapshot{NextID: 4, Tasks: []task.Task{valid, valid}}, nil)
			},
			expectedCode: service.CodeCorruptData,
		},
		{
			name: "invalid snapshot - completed without timestamp",
			setupMock: func(m *MockTaskRepository) {
				m.On("Load", mock.Anything).Return(&task.Snapshot{NextID: 4, Tasks: []task.Task{completedNoStamp}}, nil)
			},
			expectedCode: service.CodeCorruptData,
		},
		{
			name: "read failure",
			setupMock: func(m *MockTaskRepository) {
				m.On("Load", mock.Anything).Return(nil, errors.New("permission denied"))
			},
			expectedCode: service.CodeIOFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc, err := service.NewTaskService(context.Background(), mockRepo, service.WithClock(fixedClock))

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Nil(t, svc)
				assert.Equal(t, tt.expectedCode, service.CodeOf(err))
				return
			}

			require.NoError(t, err)
			assert.Len(t, svc.GetAllTasks(context.Background()), tt.expectedLen)

			mockRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
			next, err := svc.CreateTask(context.Background(), "Next", "", task.CategoryOther, task.PriorityLow, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedNext, next.ID)
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_CreateTask тестирует создание задач
func TestTaskService_CreateTask(t *testing.T) {
	tests := []struct {
		name         string
		title        string
		category     task.Category
		priority     task.Priority
		expectedCode string
	}{
		{name: "success", title: "Buy milk", category: task.CategoryPersonal, priority: task.PriorityLow},
		{name: "empty title", title: "", category: task.CategoryWork, priority: task.PriorityHigh, expectedCode: service.CodeValidationError},
		{name: "blank title", title: "   ", category: task.CategoryWork, priority: task.PriorityHigh, expectedCode: service.CodeValidationError},
		{name: "unknown category", title: "x", category: "chores", priority: task.PriorityHigh, expectedCode: service.CodeValidationError},
		{name: "unknown priority", title: "x", category: task.CategoryWork, priority: "urgent", expectedCode: service.CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, storage := newService(t)

			created, err := svc.CreateTask(context.Background(), tt.title, "desc", tt.category, tt.priority, nil)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, service.ErrValidation)
				assert.Nil(t, created)
				assert.Zero(t, storage.Saves())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, created.ID)
			assert.Equal(t, task.StatusPending, created.Status)
			assert.Equal(t, fixedNow, created.CreatedAt)
			assert.Nil(t, created.CompletedAt)
			assert.Equal(t, 1, storage.Saves())

			snapshot, err := storage.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 2, snapshot.NextID)
			assert.Equal(t, []task.Task{*created}, snapshot.Tasks)
		})
	}
}

func TestTaskService_IDsAreUniqueAndNotReused(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	first := addTask(t, svc, "one", nil)
	second := addTask(t, svc, "two", nil)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)

	// удаление задачи с максимальным id не освобождает его
	require.NoError(t, svc.DeleteTask(ctx, second.ID))
	third := addTask(t, svc, "three", nil)
	assert.Equal(t, 3, third.ID)

	seen := map[int]bool{}
	for _, tk := range svc.GetAllTasks(ctx) {
		assert.False(t, seen[tk.ID], "повторный id %d", tk.ID)
		seen[tk.ID] = true
	}
}

func TestTaskService_IDsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)

	addTask(t, svc, "one", nil)
	last := addTask(t, svc, "two", nil)
	require.NoError(t, svc.DeleteTask(ctx, last.ID))

	restarted, err := service.NewTaskService(ctx, storage, service.WithClock(fixedClock))
	require.NoError(t, err)

	next := addTask(t, restarted, "three", nil)
	assert.Equal(t, 3, next.ID)
}

func TestTaskService_IDSpaceOverflow(t *testing.T) {
	ctx := context.Background()
	stored := func(id int, title string) task.Task {
		return task.New(id, title, "", task.CategoryWork, task.PriorityMedium, nil, fixedNow)
	}

	t.Run("stored max id is corrupt", func(t *testing.T) {
		storage := inmemory.NewTaskStorageWith(task.Snapshot{
			NextID: 0,
			Tasks:  []task.Task{stored(1, "one"), stored(math.MaxInt, "last")},
		})

		svc, err := service.NewTaskService(ctx, storage)

		assert.Nil(t, svc)
		assert.ErrorIs(t, err, service.ErrCorruptData)
	})

	t.Run("counter at the end refuses to allocate", func(t *testing.T) {
		storage := inmemory.NewTaskStorageWith(task.Snapshot{
			NextID: math.MaxInt,
			Tasks:  []task.Task{stored(1, "one")},
		})
		svc, err := service.NewTaskService(ctx, storage, service.WithClock(fixedClock))
		require.NoError(t, err)

		created, err := svc.CreateTask(ctx, "a", "", task.CategoryWork, task.PriorityMedium, nil)

		assert.Nil(t, created)
		assert.ErrorIs(t, err, service.ErrIDExhausted)
		assert.Len(t, svc.GetAllTasks(ctx), 1)
		assert.Equal(t, 0, storage.Saves())

		// хранилище по-прежнему загружается
		_, err = service.NewTaskService(ctx, storage)
		assert.NoError(t, err)
	})
}

// TestTaskService_DeleteSecondOfThree - добавить три задачи и удалить вторую
func TestTaskService_DeleteSecondOfThree(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)

	addTask(t, svc, "first", nil)
	addTask(t, svc, "second", nil)
	addTask(t, svc, "third", nil)

	require.NoError(t, svc.DeleteTask(ctx, 2))

	all := svc.GetAllTasks(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, 3, all[1].ID)

	_, err := svc.GetTaskByID(ctx, 2)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.DeleteTask(ctx, 2)
	assert.ErrorIs(t, err, service.ErrNotFound)

	snapshot, err := storage.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Tasks, 2)
	assert.Equal(t, 3, snapshot.Tasks[1].ID)
}

func TestTaskService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)
	addTask(t, svc, "only", nil)
	saves := storage.Saves()

	_, err := svc.GetTaskByID(ctx, 42)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.StartTask(ctx, 42)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.CompleteTask(ctx, 42)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.UpdateTask(ctx, 42, task.WithTitle("x"))
	assert.ErrorIs(t, err, service.ErrNotFound)

	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, 42, busErr.Details["id"])

	assert.Equal(t, saves, storage.Saves())
}

// TestTaskService_StatusTransitions тестирует переходы статусов
func TestTaskService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	clock := fixedNow
	storage := inmemory.NewTaskStorage()
	svc, err := service.NewTaskService(ctx, storage, service.WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	created := addTask(t, svc, "work", nil)

	started, err := svc.StartTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, started.Status)

	// повторный запуск ничего не меняет
	again, err := svc.StartTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, started, again)

	completed, err := svc.CompleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, fixedNow, *completed.CompletedAt)

	// completed - конечный статус
	afterStart, err := svc.StartTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, afterStart.Status)

	clock = fixedNow.Add(time.Hour)
	recompleted, err := svc.CompleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Add(time.Hour), *recompleted.CompletedAt)

	// из pending сразу в completed
	other := addTask(t, svc, "quick", nil)
	done, err := svc.CompleteTask(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, done.Status)
}

// TestTaskService_OverdueThenComplete - просроченная задача перестаёт быть просроченной после завершения
func TestTaskService_OverdueThenComplete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	yesterday := task.DateOf(fixedNow.Local()).AddDays(-1)
	today := task.DateOf(fixedNow.Local())
	late := addTask(t, svc, "late", &yesterday)
	addTask(t, svc, "today", &today)
	addTask(t, svc, "no due", nil)

	overdue := svc.GetOverdueTasks(ctx)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.Equal(t, 1, svc.GetStatistics(ctx).Overdue)

	_, err := svc.CompleteTask(ctx, late.ID)
	require.NoError(t, err)

	assert.Empty(t, svc.GetOverdueTasks(ctx))
	assert.Zero(t, svc.GetStatistics(ctx).Overdue)
}

// TestTaskService_UpdateTask тестирует частичное обновление
func TestTaskService_UpdateTask(t *testing.T) {
	due := task.NewDate(2026, time.April, 1)
	newDue := task.NewDate(2026, time.May, 2)

	tests := []struct {
		name         string
		options      []task.TaskOption
		expectedCode string
		verify       func(*testing.T, *task.Task)
	}{
		{
			name:    "title only keeps due date",
			options: []task.TaskOption{task.WithTitle("Renamed")},
			verify: func(t *testing.T, tk *task.Task) {
				assert.Equal(t, "Renamed", tk.Title)
				require.NotNil(t, tk.DueDate)
				assert.Equal(t, due, *tk.DueDate)
			},
		},
		{
			name:    "clear due date",
			options: []task.TaskOption{task.WithoutDueDate()},
			verify: func(t *testing.T, tk *task.Task) {
				assert.Nil(t, tk.DueDate)
				assert.Equal(t, "Original", tk.Title)
			},
		},
		{
			name:    "replace due date and priority",
			options: []task.TaskOption{task.WithDueDate(newDue), task.WithPriority(task.PriorityHigh)},
			verify: func(t *testing.T, tk *task.Task) {
				assert.Equal(t, newDue, *tk.DueDate)
				assert.Equal(t, task.PriorityHigh, tk.Priority)
			},
		},
		{
			name:         "blank title rejected",
			options:      []task.TaskOption{task.WithTitle(" ")},
			expectedCode: service.CodeValidationError,
		},
		{
			name:         "unknown category rejected",
			options:      []task.TaskOption{task.WithCategory("chores")},
			expectedCode: service.CodeValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, storage := newService(t)
			created := addTask(t, svc, "Original", &due)

			updated, err := svc.UpdateTask(ctx, created.ID, tt.options...)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, service.CodeOf(err))
				stored, getErr := svc.GetTaskByID(ctx, created.ID)
				require.NoError(t, getErr)
				assert.Equal(t, created, stored)
				return
			}

			require.NoError(t, err)
			tt.verify(t, updated)
			assert.Equal(t, created.ID, updated.ID)
			assert.Equal(t, created.Status, updated.Status)
			assert.Equal(t, created.CreatedAt, updated.CreatedAt)

			snapshot, err := storage.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, *updated, snapshot.Tasks[0])
		})
	}
}

func TestTaskService_Filters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.CreateTask(ctx, "report", "", task.CategoryWork, task.PriorityHigh, nil)
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "run", "", task.CategoryHealth, task.PriorityLow, nil)
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "review", "", task.CategoryWork, task.PriorityLow, nil)
	require.NoError(t, err)
	_, err = svc.StartTask(ctx, 3)
	require.NoError(t, err)

	work, err := svc.GetTasksByCategory(ctx, task.CategoryWork)
	require.NoError(t, err)
	assert.Len(t, work, 2)

	low, err := svc.GetTasksByPriority(ctx, task.PriorityLow)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, 2, low[0].ID)
	assert.Equal(t, 3, low[1].ID)

	inProgress, err := svc.GetTasksByStatus(ctx, task.StatusInProgress)
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	assert.Equal(t, "review", inProgress[0].Title)

	study, err := svc.GetTasksByCategory(ctx, task.CategoryStudy)
	require.NoError(t, err)
	assert.NotNil(t, study)
	assert.Empty(t, study)

	_, err = svc.GetTasksByStatus(ctx, "cancelled")
	assert.ErrorIs(t, err, service.ErrValidation)

	// результаты - копии
	work[0].Title = "changed"
	again, err := svc.GetTaskByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "report", again.Title)
}

// TestTaskService_Statistics проверяет согласованность статистики
func TestTaskService_Statistics(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	yesterday := task.DateOf(fixedNow.Local()).AddDays(-1)
	_, err := svc.CreateTask(ctx, "a", "", task.CategoryWork, task.PriorityHigh, &yesterday)
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "b", "", task.CategoryWork, task.PriorityLow, nil)
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "c", "", task.CategoryStudy, task.PriorityLow, &yesterday)
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, "d", "", task.CategoryOther, task.PriorityMedium, nil)
	require.NoError(t, err)
	_, err = svc.StartTask(ctx, 2)
	require.NoError(t, err)
	_, err = svc.CompleteTask(ctx, 3)
	require.NoError(t, err)

	stats := svc.GetStatistics(ctx)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, stats.Total, stats.Completed+stats.InProgress+stats.Pending)
	assert.Equal(t, 25.0, stats.CompletionRate())

	require.Len(t, stats.ByCategory, len(task.Categories()))
	require.Len(t, stats.ByPriority, len(task.Priorities()))

	categorySum := 0
	for i, c := range stats.ByCategory {
		assert.Equal(t, task.Categories()[i], c.Category)
		categorySum += c.Count
	}
	assert.Equal(t, stats.Total, categorySum)
	assert.Equal(t, service.CategoryCount{Category: task.CategoryWork, Count: 2}, stats.ByCategory[0])
	assert.Equal(t, service.CategoryCount{Category: task.CategoryHealth, Count: 0}, stats.ByCategory[3])

	prioritySum := 0
	for i, p := range stats.ByPriority {
		assert.Equal(t, task.Priorities()[i], p.Priority)
		prioritySum += p.Count
	}
	assert.Equal(t, stats.Total, prioritySum)
	assert.Equal(t, service.PriorityCount{Priority: task.PriorityLow, Count: 2}, stats.ByPriority[2])

	empty, _ := newService(t)
	zero := empty.GetStatistics(ctx)
	assert.Zero(t, zero.Total)
	assert.Zero(t, zero.CompletionRate())
	assert.Len(t, zero.ByCategory, len(task.Categories()))
}

// TestTaskService_SaveFailure - при ошибке сохранения изменение остаётся в памяти
func TestTaskService_SaveFailure(t *testing.T) {
	ctx := context.Background()
	diskErr := errors.New("disk full")

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Load", mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("Save", mock.Anything, mock.Anything).Return(diskErr)

	svc, err := service.NewTaskService(ctx, mockRepo, service.WithClock(fixedClock))
	require.NoError(t, err)

	created, err := svc.CreateTask(ctx, "unsaved", "", task.CategoryWork, task.PriorityHigh, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrIOFailure)
	assert.ErrorIs(t, err, diskErr)
	require.NotNil(t, created)
	assert.Equal(t, 1, created.ID)

	stored, err := svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "unsaved", stored.Title)

	_, err = svc.StartTask(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrIOFailure)
	stored, err = svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, stored.Status)

	err = svc.DeleteTask(ctx, created.ID)
	assert.ErrorIs(t, err, service.ErrIOFailure)
	assert.Empty(t, svc.GetAllTasks(ctx))

	mockRepo.AssertNumberOfCalls(t, "Save", 3)
}

func TestTaskService_SaveReceivesFullSnapshot(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Load", mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *task.Snapshot) bool {
		return s.NextID == 2 && len(s.Tasks) == 1
	})).Return(nil).Once()
	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(s *task.Snapshot) bool {
		return s.NextID == 3 && len(s.Tasks) == 2 && s.Tasks[1].Title == "second"
	})).Return(nil).Once()

	svc, err := service.NewTaskService(ctx, mockRepo, service.WithClock(fixedClock))
	require.NoError(t, err)

	addTask(t, svc, "first", nil)
	addTask(t, svc, "second", nil)

	mockRepo.AssertExpectations(t)
}

func TestTaskService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)
	addTask(t, svc, "one", nil)
	addTask(t, svc, "two", nil)

	require.NoError(t, svc.Reset(ctx))

	assert.Empty(t, svc.GetAllTasks(ctx))
	exists, err := storage.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	again := addTask(t, svc, "fresh", nil)
	assert.Equal(t, 1, again.ID)

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Load", mock.Anything).Return(nil, repository.ErrNotFound)
	mockRepo.On("Delete", mock.Anything).Return(errors.New("busy"))
	failing, err := service.NewTaskService(ctx, mockRepo)
	require.NoError(t, err)
	assert.ErrorIs(t, failing.Reset(ctx), service.ErrIOFailure)
}

// TestTaskService_FileBacking - свежий старт без файла и старт с повреждённым файлом
func TestTaskService_FileBacking(t *testing.T) {
	ctx := context.Background()
	const path = "/home/user/.tasks/tasks.json"

	t.Run("fresh start", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		storage := file.New(fs, path, file.FormatJSON)

		svc, err := service.NewTaskService(ctx, storage, service.WithClock(fixedClock))
		require.NoError(t, err)
		assert.Empty(t, svc.GetAllTasks(ctx))

		created := addTask(t, svc, "persisted", nil)
		reloaded, err := service.NewTaskService(ctx, file.New(fs, path, file.FormatJSON))
		require.NoError(t, err)

		all := reloaded.GetAllTasks(ctx)
		require.Len(t, all, 1)
		assert.Equal(t, *created, all[0])
	})

	t.Run("corrupt file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, path, []byte("{{ definitely not json"), 0o600))

		svc, err := service.NewTaskService(ctx, file.New(fs, path, file.FormatJSON))
		require.Error(t, err)
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, service.ErrCorruptData)
		assert.ErrorIs(t, err, repository.ErrCorruptData)
	})
}

func TestTaskService_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	svc, storage := newService(t)

	const workers = 25
	var wg sync.WaitGroup
	ids := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.CreateTask(ctx, "parallel", "", task.CategoryOther, task.PriorityLow, nil)
			if assert.NoError(t, err) {
				ids <- created.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, workers)
	assert.Equal(t, workers, storage.Saves())

	snapshot, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Tasks, workers)
	assert.Equal(t, workers+1, snapshot.NextID)
}

func TestBusinessError(t *testing.T) {
	cause := errors.New("io")
	err := service.NewIOFailure("сохранение", cause)

	assert.Contains(t, err.Error(), "[IO_FAILURE]")
	assert.Contains(t, err.Error(), "io")
	assert.ErrorIs(t, err, service.ErrIOFailure)
	assert.NotErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, service.CodeIOFailure, service.CodeOf(err))
	assert.Equal(t, "", service.CodeOf(cause))

	custom := service.NewBusinessError("CUSTOM", "сообщение", service.ToDetail("key", 1))
	assert.Equal(t, 1, custom.Details["key"])
	assert.Equal(t, "[CUSTOM] сообщение", custom.Error())
}
