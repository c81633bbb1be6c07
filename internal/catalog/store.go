package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/recorder"
)

// Catalog sources.
const (
	SourceAPI      = "api"
	SourceFallback = "fallback"
	SourceFile     = "file"
)

// Snapshot is the catalog in effect at one moment.
type Snapshot struct {
	Capabilities *model.Capabilities `json:"capabilities"`
	Source       string              `json:"source"`
	Notice       string              `json:"notice,omitempty"`
}

// Fallback reports whether the built-in or file catalog is in use.
func (s Snapshot) Fallback() bool { return s.Source != SourceAPI }

// Store keeps the current capability catalog, refreshed from the API and
// falling back to a built-in or file-provided catalog.
type Store struct {
	fetcher  collector.Fetcher
	recorder recorder.Recorder
	filePath string

	mu       sync.RWMutex
	snap     Snapshot
	fallback *model.Capabilities
	fbSource string
}

// NewStore creates a Store serving the fallback catalog until the first
// Refresh. filePath, if set, overrides the built-in fallback.
func NewStore(fetcher collector.Fetcher, rec recorder.Recorder, filePath string) *Store {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Store{
		fetcher:  fetcher,
		recorder: rec,
		filePath: filePath,
		fallback: Fallback(),
		fbSource: SourceFallback,
	}
	if filePath != "" {
		if err := s.LoadFile(); err != nil {
			log.Printf("[WARN] catalog file %s: %v, using built-in fallback", filePath, err)
		}
	}
	s.snap = Snapshot{Capabilities: s.fallback, Source: s.fbSource}
	return s
}

// Snapshot returns the catalog in effect.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh asks the API for the catalog. On failure the fallback catalog is
// served with a notice and the error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	caps, err := s.fetcher.FetchCapabilities(ctx)
	if err == nil && len(caps.Assets) == 0 {
		err = errors.New("no assets listed")
	}

	evt := &recorder.CatalogRefreshEvent{}
	s.mu.Lock()
	if err != nil {
		s.snap = Snapshot{Capabilities: s.fallback, Source: s.fbSource, Notice: FallbackNotice(err)}
		evt.Err = err.Error()
	} else {
		s.snap = Snapshot{Capabilities: caps, Source: SourceAPI}
	}
	evt.Source = s.snap.Source
	evt.Assets = len(s.snap.Capabilities.Assets)
	s.mu.Unlock()

	if rerr := s.recorder.RecordCatalogRefresh(evt); rerr != nil {
		log.Printf("[WARN] record catalog refresh: %v", rerr)
	}
	if err != nil {
		log.Printf("[WARN] capabilities unavailable, serving %s catalog: %v", evt.Source, err)
		return fmt.Errorf("refresh capabilities: %w", err)
	}
	log.Printf("[INFO] catalog refreshed: %d assets", evt.Assets)
	return nil
}

// LoadFile reads the fallback catalog file. A missing file is not an error.
func (s *Store) LoadFile() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read catalog file: %w", err)
	}
	var caps model.Capabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}
	if len(caps.Assets) == 0 {
		return fmt.Errorf("catalog file lists no assets")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = &caps
	s.fbSource = SourceFile
	if s.snap.Capabilities != nil && s.snap.Source != SourceAPI {
		s.snap.Capabilities = s.fallback
		s.snap.Source = SourceFile
	}
	return nil
}

// Watch reloads the fallback file whenever it changes, until ctx is done.
// The parent directory is watched so editors that replace the file work.
func (s *Store) Watch(ctx context.Context) error {
	if s.filePath == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed creating file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.filePath, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(s.filePath)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if err := s.LoadFile(); err != nil {
					log.Printf("[WARN] reload catalog file: %v", err)
					continue
				}
				log.Printf("[INFO] catalog file reloaded: %s", s.filePath)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[WARN] catalog watcher: %v", err)
			}
		}
	}()
	return nil
}
