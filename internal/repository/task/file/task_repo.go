package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	DocumentVersion = 1
	TempSuffix      = ".tmp"
	storeName       = "file"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("неизвестный формат файла %q", s)
}

// document - то, что лежит на диске
type document struct {
	Version int         `json:"version" yaml:"version"`
	NextID  int         `json:"next_id" yaml:"next_id"`
	Tasks   []task.Task `json:"tasks" yaml:"tasks"`
}

type Storage struct {
	fs     afero.Fs
	path   string
	format Format
	mtx    *sync.Mutex
}

func New(fs afero.Fs, path string, format Format) *Storage {
	if format == "" {
		format = FormatJSON
	}
	return &Storage{
		fs:     fs,
		path:   path,
		format: format,
		mtx:    &sync.Mutex{},
	}
}

func (s *Storage) Load(ctx context.Context) (*task.Snapshot, error) {
	defer repo.ObserveDuration(storeName, "load", time.Now())
	s.mtx.Lock()
	defer s.mtx.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Ошибка чтения файла задач", err, zap.String("path", s.path))
		return nil, fmt.Errorf("чтение %s: %w", s.path, err)
	}

	doc, err := s.decode(data)
	if err != nil {
		logger.Error("Repository: Файл задач повреждён", err, zap.String("path", s.path))
		return nil, fmt.Errorf("%s: %w: %v", s.path, repo.ErrCorruptData, err)
	}

	tasks := doc.Tasks
	if tasks == nil {
		tasks = []task.Task{}
	}

	logger.Debug("Repository: Файл задач загружен",
		zap.String("path", s.path),
		zap.Int("tasks", len(tasks)),
	)
	return &task.Snapshot{NextID: doc.NextID, Tasks: tasks}, nil
}

// Save перезаписывает документ целиком: пишет во временный файл и переименовывает его поверх старого
func (s *Storage) Save(ctx context.Context, snapshot *task.Snapshot) error {
	defer repo.ObserveDuration(storeName, "save", time.Now())
	s.mtx.Lock()
	defer s.mtx.Unlock()

	doc := document{
		Version: DocumentVersion,
		NextID:  snapshot.NextID,
		Tasks:   snapshot.Tasks,
	}
	if doc.Tasks == nil {
		doc.Tasks = []task.Task{}
	}

	data, err := s.encode(doc)
	if err != nil {
		return fmt.Errorf("кодирование документа: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o750); err != nil {
			logger.Error("Repository: Не удалось создать каталог", err, zap.String("dir", dir))
			return fmt.Errorf("создание каталога %s: %w", dir, err)
		}
	}

	tmp := s.path + TempSuffix
	if err := s.writeSynced(tmp, data); err != nil {
		_ = s.fs.Remove(tmp)
		logger.Error("Repository: Ошибка записи временного файла", err, zap.String("path", tmp))
		return err
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		logger.Error("Repository: Ошибка замены файла задач", err, zap.String("path", s.path))
		return fmt.Errorf("переименование %s: %w", tmp, err)
	}

	logger.Debug("Repository: Файл задач сохранён",
		zap.String("path", s.path),
		zap.Int("tasks", len(doc.Tasks)),
	)
	return nil
}

func (s *Storage) Exists(ctx context.Context) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	ok, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return false, fmt.Errorf("проверка %s: %w", s.path, err)
	}
	return ok, nil
}

// Delete удаляет файл; отсутствие файла ошибкой не считается
func (s *Storage) Delete(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("Repository: Ошибка удаления файла задач", err, zap.String("path", s.path))
		return fmt.Errorf("удаление %s: %w", s.path, err)
	}
	logger.Info("Repository: Файл задач удалён", zap.String("path", s.path))
	return nil
}

func (s *Storage) writeSynced(name string, data []byte) error {
	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("открытие %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("запись %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("закрытие %s: %w", name, err)
	}
	return nil
}

func (s *Storage) encode(doc document) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(doc)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (s *Storage) decode(data []byte) (document, error) {
	var doc document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, errors.New("пустой файл")
	}

	var err error
	if s.format == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return doc, err
	}

	if doc.Version != DocumentVersion {
		return doc, fmt.Errorf("неподдерживаемая версия документа %d", doc.Version)
	}
	return doc, nil
}
