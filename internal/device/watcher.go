package device

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// ReadStatusFile reads a device status file containing one of the status
// words (active, inactive, maintenance), ignoring surrounding whitespace.
func ReadStatusFile(path string) (core.DeviceStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read device status file: %w", err)
	}
	status := core.DeviceStatus(strings.TrimSpace(string(data)))
	if !status.Valid() {
		return "", fmt.Errorf("device status file %s contains unsupported status %q", path, status)
	}
	return status, nil
}

// WatchStatusFile watches the status file and installs its value into the
// cell whenever it changes. A file with unsupported contents is logged and
// skipped, leaving the last good status in place. Blocks until ctx is done.
func WatchStatusFile(ctx context.Context, path string, cell *StatusCell, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create status watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors and atomic writers replace the file,
	// which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch status directory: %w", err)
	}

	logger.Debug("watching device status file", "path", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			status, err := ReadStatusFile(path)
			if err != nil {
				logger.Warn("ignoring device status change", "error", err)
				continue
			}
			if status != cell.Get() {
				logger.Info("device status changed", "status", status)
				cell.Set(status)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("status watcher error", "error", err)
		}
	}
}
