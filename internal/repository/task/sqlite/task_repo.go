package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const storeName = "sqlite"

// taskRow - строка таблицы tasks; время хранится текстом RFC3339Nano, дата - ГГГГ-ММ-ДД
type taskRow struct {
	Position    int            `db:"position"`
	ID          int            `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	Priority    string         `db:"priority"`
	Status      string         `db:"status"`
	DueDate     sql.NullString `db:"due_date"`
	CreatedAt   string         `db:"created_at"`
	CompletedAt sql.NullString `db:"completed_at"`
}

type Storage struct {
	db   *sqlx.DB
	path string
}

// New открывает (или создаёт) базу по пути path и применяет миграции
func New(ctx context.Context, path string) (*Storage, error) {
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err, zap.String("path", path))
		return nil, fmt.Errorf("открытие sqlite: %w", err)
	}
	// один писатель; для :memory: ещё и одна и та же база
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, classify(fmt.Sprintf("%s: включение WAL", path), err)
	}

	s := &Storage{db: db, path: path}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, classify(fmt.Sprintf("%s: миграции", path), err)
	}

	logger.Info("Repository: SQLite подключена", zap.String("path", path))
	return s, nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие SQLite")
	return s.db.Close()
}

func (s *Storage) runMigrations(ctx context.Context) error {
	current := 0

	var tableCount int
	err := s.db.GetContext(ctx, &tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return fmt.Errorf("проверка schema_version: %w", err)
	}
	if tableCount > 0 {
		if err := s.db.GetContext(ctx, &current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("чтение версии схемы: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("миграция v%d: %w", m.version, err)
		}
		logger.Debug("Repository: Миграция SQLite применена", zap.Int("version", m.version))
	}
	return nil
}

// applyMigration выполняет миграцию и запись её версии одной транзакцией
func (s *Storage) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("запись версии: %w", err)
	}
	return tx.Commit()
}

// classify помечает ошибки "файл не база" и "база повреждена" как ErrCorruptData
func classify(op string, err error) error {
	var sqliteErr *driver.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_CORRUPT:
			logger.Error("Repository: Файл SQLite повреждён", err)
			return fmt.Errorf("%s: %w: %v", op, repo.ErrCorruptData, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Storage) Load(ctx context.Context) (*task.Snapshot, error) {
	defer repo.ObserveDuration(storeName, "load", time.Now())

	var nextID int
	err := s.db.GetContext(ctx, &nextID, "SELECT next_id FROM meta WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, classify("чтение счётчика", err)
	}

	var rows []taskRow
	err = s.db.SelectContext(ctx, &rows, `
		SELECT position, id, title, description, category, priority, status,
		       due_date, created_at, completed_at
		FROM tasks ORDER BY position`)
	if err != nil {
		return nil, classify("чтение задач", err)
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		t, err := r.toTask()
		if err != nil {
			logger.Error("Repository: Повреждённая строка задачи", err, zap.Int("id", r.ID))
			return nil, fmt.Errorf("задача %d: %w: %v", r.ID, repo.ErrCorruptData, err)
		}
		tasks = append(tasks, t)
	}

	return &task.Snapshot{NextID: nextID, Tasks: tasks}, nil
}

// Save заменяет содержимое таблиц в одной транзакции
func (s *Storage) Save(ctx context.Context, snapshot *task.Snapshot) error {
	defer repo.ObserveDuration(storeName, "save", time.Now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("очистка задач: %w", err)
	}

	const insert = `
		INSERT INTO tasks (
			position, id, title, description, category, priority, status,
			due_date, created_at, completed_at
		) VALUES (
			:position, :id, :title, :description, :category, :priority, :status,
			:due_date, :created_at, :completed_at
		)`
	for i, t := range snapshot.Tasks {
		if _, err := tx.NamedExecContext(ctx, insert, fromTask(i, t)); err != nil {
			return fmt.Errorf("вставка задачи %d: %w", t.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO meta (id, next_id) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET next_id = excluded.next_id`, snapshot.NextID)
	if err != nil {
		return fmt.Errorf("обновление счётчика: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Repository: Ошибка фиксации транзакции", err)
		return fmt.Errorf("фиксация: %w", err)
	}

	logger.Debug("Repository: Снимок сохранён в SQLite", zap.Int("tasks", len(snapshot.Tasks)))
	return nil
}

func (s *Storage) Exists(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM meta"); err != nil {
		return false, fmt.Errorf("проверка meta: %w", err)
	}
	return n > 0, nil
}

func (s *Storage) Delete(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("очистка задач: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM meta"); err != nil {
		return fmt.Errorf("очистка meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("фиксация: %w", err)
	}

	logger.Info("Repository: Данные SQLite удалены", zap.String("path", s.path))
	return nil
}

func fromTask(position int, t task.Task) taskRow {
	r := taskRow{
		Position:    position,
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    string(t.Category),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if t.DueDate != nil {
		r.DueDate = sql.NullString{String: t.DueDate.String(), Valid: true}
	}
	if t.CompletedAt != nil {
		r.CompletedAt = sql.NullString{String: t.CompletedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	return r
}

func (r taskRow) toTask() (task.Task, error) {
	t := task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    task.Category(r.Category),
		Priority:    task.Priority(r.Priority),
		Status:      task.Status(r.Status),
	}

	created, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return t, fmt.Errorf("created_at: %w", err)
	}
	t.CreatedAt = created.UTC()

	if r.DueDate.Valid {
		d, err := task.ParseDate(r.DueDate.String)
		if err != nil {
			return t, err
		}
		t.DueDate = &d
	}
	if r.CompletedAt.Valid {
		at, err := time.Parse(time.RFC3339Nano, r.CompletedAt.String)
		if err != nil {
			return t, fmt.Errorf("completed_at: %w", err)
		}
		at = at.UTC()
		t.CompletedAt = &at
	}
	return t, nil
}
