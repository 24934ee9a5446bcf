// Package camera acquires encoded frames for analysis. The capture daemon
// is an external process; fieldscope only reads what it drops into a spool
// directory.
package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrNoFrame signals that capture is not ready. The orchestrator treats it
// as CaptureUnavailable, never as a crash.
var ErrNoFrame = errors.New("no frame available")

// Source defines the frame-acquisition contract.
type Source interface {
	// Capture returns the current encoded frame, or ErrNoFrame when the
	// capture side has not produced one yet.
	Capture(ctx context.Context) ([]byte, error)
}

// SpoolSource serves the newest complete file from a spool directory. A
// watcher keeps the latest path current between captures; when no event has
// been observed yet, Capture falls back to a directory scan.
type SpoolSource struct {
	dir      string
	maxBytes int64

	mu     sync.Mutex
	latest string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewSpoolSource starts watching dir for dropped frames. The directory must
// exist.
func NewSpoolSource(dir string, maxBytes int64) (*SpoolSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("spool dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("spool dir %s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch spool dir: %w", err)
	}

	s := &SpoolSource{
		dir:      dir,
		maxBytes: maxBytes,
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	go s.watch()
	return s, nil
}

func (s *SpoolSource) watch() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				s.mu.Lock()
				s.latest = event.Name
				s.mu.Unlock()
			}
		case _, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are recoverable: Capture still scans the
			// directory when no tracked path exists.
		}
	}
}

// Capture returns the newest frame in the spool.
func (s *SpoolSource) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	path := s.latest
	s.mu.Unlock()

	if path == "" {
		scanned, err := newestFile(s.dir)
		if err != nil {
			return nil, err
		}
		path = scanned
	}

	data, err := os.ReadFile(path)
	if err != nil {
		// The tracked file may have been rotated away; rescan once.
		if path, err = newestFile(s.dir); err != nil {
			return nil, err
		}
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
		}
	}

	if len(data) == 0 {
		return nil, ErrNoFrame
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("frame %s exceeds %d bytes", filepath.Base(path), s.maxBytes)
	}
	return data, nil
}

// Close stops the watcher.
func (s *SpoolSource) Close() error {
	close(s.done)
	return s.watcher.Close()
}

// newestFile returns the most recently modified regular file in dir.
func newestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoFrame, err)
	}

	var newest string
	var newestMod int64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = filepath.Join(dir, entry.Name())
			newestMod = mod
		}
	}
	if newest == "" {
		return "", ErrNoFrame
	}
	return newest, nil
}

// FileSource serves a single frame from a fixed file. Used by the one-shot
// analyze command.
type FileSource struct {
	Path string
}

// Capture reads the file.
func (f FileSource) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	if len(data) == 0 {
		return nil, ErrNoFrame
	}
	return data, nil
}
