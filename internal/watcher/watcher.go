package watcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/internal/domain/chatModel"
	"github.com/pebblebot/pebble/internal/rag"
	"github.com/pebblebot/pebble/pkg/logger_i"
)

// Watcher ingests documents dropped into a local folder, so a deployment can
// preload a knowledge base without going through the HTTP surface. Everything
// lands in the local operator tenant.
type Watcher struct {
	dir    string
	rag    rag.Service
	scope  chatModel.Scope
	logger *logger_i.Logger
}

func New(dir string, ragService rag.Service) *Watcher {
	return &Watcher{
		dir:    dir,
		rag:    ragService,
		scope:  chatModel.Scope{UserID: config.WatchTenantUser},
		logger: logger_i.NewLogger("Drop Folder").With("dir", dir),
	}
}

// Run blocks until ctx is cancelled. Errors on individual files are logged
// and skipped; the watcher itself only stops on a broken fsnotify stream.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching drop folder")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !supported(event.Name) {
				continue
			}
			// give the writer a moment to finish the file
			time.Sleep(config.WatchSettleDelay)
			w.ingestFile(ctx, event.Name)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	result, err := w.rag.Ingest(ctx, &fileAttachment{path: path}, w.scope)
	if err != nil {
		w.logger.Error("drop folder ingestion failed", "file", filepath.Base(path), "error", err)
		return
	}
	w.logger.Info("ingested dropped file",
		"file", result.Filename, "chunks", result.ChunksStored, "pages", result.PagesProcessed)
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".pdf":
		return true
	}
	return false
}

// fileAttachment adapts an on-disk file to the attachment contract.
type fileAttachment struct {
	path string
}

func (f *fileAttachment) Filename() string { return filepath.Base(f.path) }

func (f *fileAttachment) Size() int64 {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func (f *fileAttachment) Save(path string) error {
	src, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
