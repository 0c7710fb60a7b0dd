package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Назначения путей хранения
var validPurposes = map[string]bool{
	"recordings": true,
	"backups":    true,
	"voicemail":  true,
	"moh":        true,
}

var ErrInvalidStoragePath = errors.New("invalid storage path")

// StoragePaths отображение назначения на абсолютный путь хранения
type StoragePaths map[string]string

// DefaultStoragePaths возвращает пути по умолчанию
func DefaultStoragePaths() StoragePaths {
	return StoragePaths{
		"recordings": "/var/lib/flexpbx/recordings",
		"backups":    "/var/lib/flexpbx/backups",
		"voicemail":  "/var/lib/flexpbx/voicemail",
		"moh":        "/var/lib/flexpbx/moh",
	}
}

// StoragePathService читает и записывает JSON-файл конфигурации путей
// хранения. Файл отслеживается через fsnotify: правки, сделанные другим
// процессом или администратором вручную, подхватываются без перезапуска.
type StoragePathService struct {
	filePath string
	log      *zap.Logger

	mu      sync.RWMutex
	current StoragePaths

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewStoragePathService создает сервис и загружает текущую конфигурацию
func NewStoragePathService(filePath string, log *zap.Logger) (*StoragePathService, error) {
	s := &StoragePathService{
		filePath: filePath,
		log:      log,
		current:  DefaultStoragePaths(),
		done:     make(chan struct{}),
	}

	if err := s.reload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Info("storage paths file not found, using defaults", zap.String("file", filePath))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create storage paths watcher: %w", err)
	}
	s.watcher = watcher

	// Следим за каталогом: редакторы и атомарная запись заменяют файл,
	// а не пишут в него
	if err := watcher.Add(filepath.Dir(filePath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch storage paths directory: %w", err)
	}

	go s.watch()

	return s, nil
}

// Get возвращает копию текущих путей хранения
func (s *StoragePathService) Get() StoragePaths {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make(StoragePaths, len(s.current))
	for purpose, path := range s.current {
		paths[purpose] = path
	}
	return paths
}

// Update проверяет и записывает новые пути хранения
func (s *StoragePathService) Update(paths StoragePaths) error {
	if err := validateStoragePaths(paths); err != nil {
		return err
	}

	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage paths: %w", err)
	}

	// Атомарная запись: временный файл + переименование
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write storage paths: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		return fmt.Errorf("failed to replace storage paths file: %w", err)
	}

	s.mu.Lock()
	s.current = paths
	s.mu.Unlock()

	s.log.Info("storage paths updated", zap.String("file", s.filePath))
	return nil
}

// Close останавливает наблюдение за файлом
func (s *StoragePathService) Close() error {
	close(s.done)
	return s.watcher.Close()
}

// reload перечитывает файл конфигурации
func (s *StoragePathService) reload() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var paths StoragePaths
	if err := json.Unmarshal(data, &paths); err != nil {
		return fmt.Errorf("failed to parse storage paths file: %w", err)
	}
	if err := validateStoragePaths(paths); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = paths
	s.mu.Unlock()

	return nil
}

// watch подхватывает внешние изменения файла с debounce
func (s *StoragePathService) watch() {
	var timer *time.Timer

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			// Debounce: редакторы генерируют серии событий
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				if err := s.reload(); err != nil {
					s.log.Warn("failed to reload storage paths", zap.Error(err))
					return
				}
				s.log.Info("storage paths reloaded after external change")
			})

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("storage paths watcher error", zap.Error(err))

		case <-s.done:
			return
		}
	}
}

func validateStoragePaths(paths StoragePaths) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: empty configuration", ErrInvalidStoragePath)
	}
	for purpose, path := range paths {
		if !validPurposes[purpose] {
			return fmt.Errorf("%w: unknown purpose %q", ErrInvalidStoragePath, purpose)
		}
		if !filepath.IsAbs(path) {
			return fmt.Errorf("%w: %q must be absolute", ErrInvalidStoragePath, path)
		}
	}
	return nil
}
