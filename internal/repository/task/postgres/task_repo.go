package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const storeName = "postgres"

type Config struct {
	URL            string
	MaxConnections int
	MinConnections int
	IdleTimeout    time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	config, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if cfg.MaxConnections > 0 {
		config.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		config.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		config.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	if err := Migrate(cfg.URL); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) (*task.Snapshot, error) {
	defer repo.ObserveDuration(storeName, "load", time.Now())

	var nextID int
	err := s.pool.QueryRow(ctx, `SELECT next_id FROM meta WHERE id = 1`).Scan(&nextID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		logger.Error("Repository: Ошибка чтения счётчика", err)
		return nil, fmt.Errorf("чтение счётчика: %w", err)
	}

	query := `SELECT
				id,
				title,
				description,
				category,
				priority,
				status,
				due_date::text,
				created_at,
				completed_at
				FROM tasks
				ORDER BY position`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Ошибка чтения задач", err)
		return nil, fmt.Errorf("чтение задач: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		var (
			t           task.Task
			dueDate     *string
			completedAt *time.Time
		)
		err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Category,
			&t.Priority,
			&t.Status,
			&dueDate,
			&t.CreatedAt,
			&completedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}

		t.CreatedAt = t.CreatedAt.UTC()
		if completedAt != nil {
			at := completedAt.UTC()
			t.CompletedAt = &at
		}
		if dueDate != nil {
			d, err := task.ParseDate(*dueDate)
			if err != nil {
				return nil, fmt.Errorf("задача %d: %w: %v", t.ID, repo.ErrCorruptData, err)
			}
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("чтение задач: %w", err)
	}

	return &task.Snapshot{NextID: nextID, Tasks: tasks}, nil
}

// Save перезаписывает таблицы в одной транзакции
func (s *Storage) Save(ctx context.Context, snapshot *task.Snapshot) error {
	defer repo.ObserveDuration(storeName, "save", time.Now())

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("очистка задач: %w", err)
	}

	query := `INSERT INTO tasks
				(position, id, title, description, category, priority, status, due_date, created_at, completed_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9, $10)`

	batch := &pgx.Batch{}
	for i, t := range snapshot.Tasks {
		var dueDate *string
		if t.DueDate != nil {
			d := t.DueDate.String()
			dueDate = &d
		}
		batch.Queue(query,
			i,
			t.ID,
			t.Title,
			t.Description,
			string(t.Category),
			string(t.Priority),
			string(t.Status),
			dueDate,
			t.CreatedAt,
			t.CompletedAt,
		)
	}
	batch.Queue(`INSERT INTO meta (id, next_id) VALUES (1, $1)
				ON CONFLICT (id) DO UPDATE SET next_id = EXCLUDED.next_id`, snapshot.NextID)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		logger.Error("Repository: Не удалось сохранить задачи", err)
		return fmt.Errorf("сохранение задач: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Ошибка фиксации транзакции", err)
		return fmt.Errorf("фиксация: %w", err)
	}
	return nil
}

func (s *Storage) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM meta WHERE id = 1)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("проверка meta: %w", err)
	}
	return exists, nil
}

func (s *Storage) Delete(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE tasks, meta`)
	if err != nil {
		logger.Error("Repository: Ошибка очистки таблиц", err)
		return fmt.Errorf("очистка таблиц: %w", err)
	}
	logger.Info("Repository: Данные PostgreSQL удалены", zap.String("tables", "tasks, meta"))
	return nil
}
