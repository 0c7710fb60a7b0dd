package service

import (
	"FlexPBX-Admin/internal/domain"
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrBackupNotFound = errors.New("backup not found")

// LocalEngine движок резервного копирования на локальной файловой
// системе. Архивы и метаданные складываются в каталог backups из
// конфигурации путей хранения; компоненты без каталога (config, database)
// пропускаются с предупреждением.
type LocalEngine struct {
	paths *StoragePathService
	log   *zap.Logger
}

// NewLocalEngine создает новый локальный движок резервного копирования
func NewLocalEngine(paths *StoragePathService, log *zap.Logger) *LocalEngine {
	return &LocalEngine{
		paths: paths,
		log:   log,
	}
}

// List возвращает резервные копии, найденные в каталоге backups
func (e *LocalEngine) List(ctx context.Context) ([]domain.BackupInfo, error) {
	dir := e.backupDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := make([]domain.BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := e.readMeta(filepath.Join(dir, entry.Name()))
		if err != nil {
			e.log.Warn("skipping unreadable backup metadata",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		backups = append(backups, *info)
	}

	// Новые сверху
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Create архивирует каталоги выбранных компонентов в tar.gz
func (e *LocalEngine) Create(ctx context.Context, name string, components []string) (*domain.BackupInfo, error) {
	dir := e.backupDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	id := uuid.New().String()
	archivePath := filepath.Join(dir, id+".tar.gz")

	file, err := os.Create(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup archive: %w", err)
	}

	hasher := sha256.New()
	gz := gzip.NewWriter(io.MultiWriter(file, hasher))
	tw := tar.NewWriter(gz)

	storagePaths := e.paths.Get()
	for _, component := range components {
		root, ok := storagePaths[component]
		if !ok {
			e.log.Warn("component has no storage path, skipping",
				zap.String("component", component))
			continue
		}
		if err := e.addTree(ctx, tw, component, root); err != nil {
			tw.Close()
			gz.Close()
			file.Close()
			os.Remove(archivePath)
			return nil, fmt.Errorf("failed to archive component %s: %w", component, err)
		}
	}

	if err := tw.Close(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	stat, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	info := &domain.BackupInfo{
		ID:        id,
		Name:      name,
		SizeBytes: stat.Size(),
		Status:    domain.BackupStatusCompleted,
		CreatedAt: stat.ModTime().UTC(),
		Checksum:  hex.EncodeToString(hasher.Sum(nil)),
	}

	if err := e.writeMeta(info); err != nil {
		os.Remove(archivePath)
		return nil, err
	}

	return info, nil
}

// Restore распаковывает архив по текущим путям хранения
func (e *LocalEngine) Restore(ctx context.Context, id string) error {
	dir := e.backupDir()

	file, err := os.Open(filepath.Join(dir, id+".tar.gz"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to read backup archive: %w", err)
	}
	defer gz.Close()

	storagePaths := e.paths.Get()
	tr := tar.NewReader(gz)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		target, err := restoreTarget(storagePaths, header.Name)
		if err != nil {
			e.log.Warn("skipping archive entry", zap.String("entry", header.Name), zap.Error(err))
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fs.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to restore directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return fmt.Errorf("failed to restore directory for %s: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fs.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to restore file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("failed to restore file %s: %w", target, err)
			}
			out.Close()
		}
	}

	return nil
}

// Delete удаляет архив и метаданные резервной копии
func (e *LocalEngine) Delete(ctx context.Context, id string) error {
	dir := e.backupDir()

	if err := os.Remove(filepath.Join(dir, id+".json")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrBackupNotFound
		}
		return fmt.Errorf("failed to delete backup metadata: %w", err)
	}
	if err := os.Remove(filepath.Join(dir, id+".tar.gz")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete backup archive: %w", err)
	}

	return nil
}

// Verify сверяет контрольную сумму архива с метаданными
func (e *LocalEngine) Verify(ctx context.Context, id string) (bool, error) {
	info, err := e.GetDetails(ctx, id)
	if err != nil {
		return false, err
	}

	file, err := os.Open(filepath.Join(e.backupDir(), id+".tar.gz"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return false, fmt.Errorf("failed to hash backup archive: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)) == info.Checksum, nil
}

// GetDetails возвращает метаданные резервной копии
func (e *LocalEngine) GetDetails(ctx context.Context, id string) (*domain.BackupInfo, error) {
	info, err := e.readMeta(filepath.Join(e.backupDir(), id+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}
	return info, nil
}

// GetStorageStats возвращает статистику файловой системы каталога backups
func (e *LocalEngine) GetStorageStats(ctx context.Context) (*domain.BackupStorageStats, error) {
	dir := e.backupDir()

	var fsStat syscall.Statfs_t
	if err := syscall.Statfs(dir, &fsStat); err != nil {
		return nil, fmt.Errorf("failed to stat backup filesystem: %w", err)
	}

	backups, err := e.List(ctx)
	if err != nil {
		return nil, err
	}

	total := int64(fsStat.Blocks) * fsStat.Bsize
	available := int64(fsStat.Bavail) * fsStat.Bsize

	return &domain.BackupStorageStats{
		TotalBytes:     total,
		UsedBytes:      total - available,
		AvailableBytes: available,
		BackupCount:    len(backups),
	}, nil
}

func (e *LocalEngine) backupDir() string {
	return e.paths.Get()["backups"]
}

// addTree добавляет дерево каталога компонента в архив; записи
// именуются как <component>/<относительный путь>
func (e *LocalEngine) addTree(ctx context.Context, tw *tar.Writer, component, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == root {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = component + "/" + filepath.ToSlash(rel)

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(tw, file)
		return err
	})
}

func (e *LocalEngine) readMeta(path string) (*domain.BackupInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var info domain.BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse backup metadata: %w", err)
	}
	return &info, nil
}

func (e *LocalEngine) writeMeta(info *domain.BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup metadata: %w", err)
	}

	path := filepath.Join(e.backupDir(), info.ID+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup metadata: %w", err)
	}
	return nil
}

// restoreTarget отображает запись архива на текущий путь хранения
// компонента; записи вне известных компонентов и с выходом из каталога
// отбрасываются
func restoreTarget(paths StoragePaths, entry string) (string, error) {
	component, rest, found := strings.Cut(entry, "/")
	if !found || rest == "" {
		return "", fmt.Errorf("malformed entry name %q", entry)
	}

	root, ok := paths[component]
	if !ok {
		return "", fmt.Errorf("unknown component %q", component)
	}

	clean := filepath.Clean(rest)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("unsafe entry path %q", entry)
	}

	return filepath.Join(root, clean), nil
}
