package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/chatstack/pkg/dataset"
)

// debounce collapses the burst of events a single save produces.
const debounce = 200 * time.Millisecond

// watch reloads the dataset whenever path changes. A file that fails to load
// is logged and the previous dataset stays in place.
func (s *Server) watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so atomic renames over the file are seen.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	s.logger.Info("watching dataset", "path", abs)

	target := filepath.Base(abs)
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			s.reloadFile(ctx, abs)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}

func (s *Server) reloadFile(ctx context.Context, path string) {
	ds, err := dataset.ReadFile(path)
	if err != nil {
		s.logger.Error("reload failed, keeping previous dataset", "path", path, "error", err)
		return
	}
	if err := s.Reload(ctx, ds); err != nil {
		s.logger.Error("reload failed, keeping previous dataset", "path", path, "error", err)
	}
}
