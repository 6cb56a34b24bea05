package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/logger"
	repo "taskManager/internal/repository"
	"taskManager/internal/repository/task/file"
	"taskManager/internal/repository/task/inmemory"
	"taskManager/internal/repository/task/postgres"
	"taskManager/internal/repository/task/sqlite"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	fs         afero.Fs
	sessionID  string
	repository service.TaskRepository // интерфейс!
	service    *service.TaskService
	shutdowns  []func() // функции для освобождения ресурсов, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		fs:        afero.NewOsFs(),
		shutdowns: make([]func(), 0),
	}
}

// WithFs подменяет файловую систему файлового хранилища
func (a *App) WithFs(fs afero.Fs) *App {
	a.fs = fs
	return a
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.sessionID = uuid.NewString()
	logger.WithSession(a.sessionID)

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	repository, err := a.initRepository(ctx)
	if err != nil {
		a.Close()
		if errors.Is(err, repo.ErrCorruptData) {
			return nil, service.NewCorruptData(err)
		}
		return nil, fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.repository = repository

	svc, err := service.NewTaskService(ctx, repository)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.service = svc

	logger.Info("App: Инициализация завершена", zap.String("storage", a.config.Storage.Type))
	return a, nil
}

func (a *App) initRepository(ctx context.Context) (service.TaskRepository, error) {
	cfg := a.config

	switch cfg.Storage.Type {
	case "file":
		format, err := file.ParseFormat(cfg.Storage.Format)
		if err != nil {
			return nil, err
		}
		return file.New(a.fs, cfg.Storage.Path, format), nil

	case "sqlite":
		storage, err := sqlite.New(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func() {
			if err := storage.Close(); err != nil {
				logger.Error("App: Ошибка закрытия SQLite", err)
			}
		})
		return storage, nil

	case "postgres":
		storage, err := postgres.New(ctx, postgres.Config{
			URL:            cfg.Database.URL,
			MaxConnections: cfg.Database.MaxConnections,
			MinConnections: cfg.Database.MinConnections,
			IdleTimeout:    cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, nil

	case "memory":
		return inmemory.NewTaskStorage(), nil
	}

	return nil, fmt.Errorf("неизвестный тип хранилища %q", cfg.Storage.Type)
}

func (a *App) Service() *service.TaskService {
	return a.service
}

func (a *App) SessionID() string {
	return a.sessionID
}

// OverdueWorker собирает фоновую проверку просроченных задач по настройкам конфига;
// непустой interval заменяет интервал из конфига
func (a *App) OverdueWorker(notify worker.Notifier, interval *time.Duration) *worker.OverdueWorker {
	every := a.config.Worker.Interval
	if interval != nil {
		every = *interval
	}
	batchSize := a.config.Worker.BatchSize
	return worker.NewOverdueWorker(a.service, notify, &every, &batchSize)
}

func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
