package drivers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"paneplot/config"
	"paneplot/export"
)

var errWatcherClosed = errors.New("watcher closed")

// Replayer publishes one column of an export file at a fixed rate. In follow mode it keeps watching the file and
// publishes rows appended to it.
type Replayer struct {
	*config.ReplayFlags
	path    string
	watcher *fsnotify.Watcher
}

func NewReplayer(replayFlags *config.ReplayFlags, path string) *Replayer {
	if path == "" {
		path = replayFlags.Path
	}
	return &Replayer{
		ReplayFlags: replayFlags,
		path:        path,
	}
}

func (r *Replayer) Init() error {
	if _, err := os.Stat(r.path); err != nil {
		return err
	}
	if !r.Follow {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", r.path, err)
	}
	// watch the directory: exports replace the file by rename, which a watch on the file itself would lose
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", r.path, err)
	}
	r.watcher = watcher
	return nil
}

func (r *Replayer) Run(ctx context.Context, publish Publish) error {
	var ticker *time.Ticker
	if r.Rate > 0 {
		ticker = time.NewTicker(time.Duration(float64(time.Second) / r.Rate))
		defer ticker.Stop()
	}

	sent := r.SkipRows
	for {
		samples, err := r.column()
		if err != nil {
			return err
		}

		for ; sent < len(samples); sent++ {
			if ticker != nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			} else if ctx.Err() != nil {
				return ctx.Err()
			}
			publish(samples[sent])
		}

		switch {
		case r.watcher != nil:
			if err := r.waitForWrite(ctx); err != nil {
				return err
			}
		case r.Loop:
			slog.Debug("replay looping", "path", r.path)
			sent = r.SkipRows
		default:
			slog.Info("end of replay", "path", r.path)
			return nil
		}
	}
}

func (r *Replayer) Close() error {
	if r.watcher == nil {
		return nil
	}
	return r.watcher.Close()
}

func (r *Replayer) column() ([]float32, error) {
	columns, err := export.ReadColumns(r.path)
	if err != nil {
		return nil, err
	}
	if r.Column < 0 || r.Column >= len(columns) {
		return nil, fmt.Errorf("replay %s: column %d out of range (%d columns)", r.path, r.Column, len(columns))
	}
	return columns[r.Column], nil
}

// waitForWrite blocks until the followed file is written or replaced.
func (r *Replayer) waitForWrite(ctx context.Context) error {
	target := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-r.watcher.Events:
			if !ok {
				return errWatcherClosed
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				return nil
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			slog.Warn("watch error", "path", r.path, "err", err)
		}
	}
}
