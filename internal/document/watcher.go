package document

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/diffview/internal/logging"
)

// Watcher observes a document's backing file and reloads the document when
// the file changes on disk. A reload emits EventReparsed, so diff views
// subscribed to the document pick up external edits.
type Watcher struct {
	doc *Document
	fsw *fsnotify.Watcher
	log *logging.Logger

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewWatcher starts watching the document's backing file.
// Returns ErrNoPath for unbacked documents.
func NewWatcher(doc *Document, logger *logging.Logger) (*Watcher, error) {
	path := doc.Path()
	if path == "" {
		return nil, ErrNoPath
	}
	if logger == nil {
		logger = logging.NullLogger
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the parent directory so atomic saves (write temp file, rename
	// over the original) are still observed.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		doc:  doc,
		fsw:  fsw,
		log:  logger.WithComponent("document.watcher"),
		done: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop(path)

	return w, nil
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		_ = w.fsw.Close()
		w.wg.Wait()
	})
}

// loop consumes fsnotify events for the watched path.
func (w *Watcher) loop(path string) {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.log.Debug("backing file changed: %s", path)
			if err := w.doc.Reload(); err != nil {
				w.log.Error("reload after file change failed: %v", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error: %v", err)
		}
	}
}
