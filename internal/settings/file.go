package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

const reloadDebounce = 100 * time.Millisecond

// FileStore keeps Values in a TOML file. Writes are atomic and, once Watch
// is running, edits made by other processes are picked up.
type FileStore struct {
	path string

	mu       sync.RWMutex
	values   Values
	onChange []func(Values)

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
}

// OpenFileStore loads path, or starts from defaults when it does not exist
// yet. The file is only created on the first Set.
func OpenFileStore(path string) (*FileStore, error) {
	values, err := readFile(path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FileStore{path: path, values: values, ctx: ctx, cancel: cancel}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

func (s *FileStore) Set(key Key, value string) error {
	s.mu.Lock()
	updated, err := s.values.With(key, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := writeFile(s.path, updated); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = updated
	callbacks := append([]func(Values){}, s.onChange...)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(updated)
	}
	return nil
}

// OnChange registers cb for every successful Set or reload.
func (s *FileStore) OnChange(cb func(Values)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, cb)
	s.mu.Unlock()
}

// Watch reloads the file when it changes on disk. The parent directory is
// watched because atomic saves replace the file.
func (s *FileStore) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		watcher.Close()
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch settings directory: %w", err)
	}
	s.watcher = watcher

	go s.watchLoop()
	return nil
}

func (s *FileStore) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-s.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(reloadDebounce, s.reload)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("request_id=- component=settings event=watch_error error=%q", err.Error())
		}
	}
}

func (s *FileStore) reload() {
	values, err := readFile(s.path)
	if err != nil {
		log.Printf("request_id=- component=settings event=reload_failed path=%s error=%q", s.path, err.Error())
		return
	}

	s.mu.Lock()
	if values == s.values {
		s.mu.Unlock()
		return
	}
	s.values = values
	callbacks := append([]func(Values){}, s.onChange...)
	s.mu.Unlock()

	log.Printf("request_id=- component=settings event=reloaded path=%s", s.path)
	for _, cb := range callbacks {
		cb(values)
	}
}

func (s *FileStore) Close() error {
	s.cancel()
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func readFile(path string) (Values, error) {
	values := Default()
	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return Values{}, fmt.Errorf("could not read settings file: %w", err)
	}
	if err := toml.Unmarshal(bytes, &values); err != nil {
		return Values{}, fmt.Errorf("could not parse settings file: %w", err)
	}
	values.normalize()
	return values, nil
}

func writeFile(path string, values Values) error {
	payload, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("could not serialize settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create settings directory: %w", err)
	}
	tempFile, err := os.CreateTemp(dir, ".qalam-settings-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp settings file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() {
		_ = os.Remove(tempPath)
	}

	if _, err := tempFile.Write(payload); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not write temp settings file: %w", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		cleanup()
		return fmt.Errorf("could not secure temp settings file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		cleanup()
		return fmt.Errorf("could not close temp settings file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		cleanup()
		return fmt.Errorf("could not replace settings file: %w", err)
	}
	return nil
}
