package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/lexrag/internal/index"
	"github.com/Aman-CERP/lexrag/internal/watcher"
	"github.com/Aman-CERP/lexrag/pkg/retriever"
)

// documentStore is the part of the engine a docSync mutates.
type documentStore interface {
	Upsert(doc retriever.Document) (bool, error)
	Remove(id string) bool
	Rebuild(ctx context.Context) (*index.Snapshot, error)
}

// docSync keeps an engine's documents in step with the files under root.
type docSync struct {
	root   string
	only   string
	store  documentStore
	logger *slog.Logger
	// owned maps a slash-separated file path to the document IDs it produced.
	owned map[string][]string
}

// syncResult counts the document changes of one batch.
type syncResult struct {
	Upserted int
	Removed  int
	Failed   int
}

func (r syncResult) changed() bool {
	return r.Upserted > 0 || r.Removed > 0
}

func newDocSync(root, only string, store documentStore, files []loadedFile, logger *slog.Logger) *docSync {
	s := &docSync{
		root:   root,
		only:   only,
		store:  store,
		logger: logger,
		owned:  make(map[string][]string, len(files)),
	}
	for _, f := range files {
		s.owned[f.Path] = docIDs(f.Docs)
	}
	return s
}

// include reports whether a changed file is loaded as documents.
func (s *docSync) include(rel string) bool {
	if s.only != "" {
		return rel == s.only
	}
	return supported(rel)
}

// run applies watcher batches until the watcher stops or ctx is canceled.
func (s *docSync) run(ctx context.Context, w *watcher.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-w.Events():
			if !ok {
				return
			}
			if _, err := s.apply(ctx, batch); err != nil {
				s.logger.Error("documents_sync_failed", slog.String("error", err.Error()))
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			s.logger.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

// apply updates the engine for one batch of file events and rebuilds the
// index if any document changed. A file that fails to load keeps its
// previous documents.
func (s *docSync) apply(ctx context.Context, batch []watcher.FileEvent) (syncResult, error) {
	var res syncResult
	for _, ev := range batch {
		switch {
		case ev.Operation == watcher.OpDelete:
			s.forget(ev.Path, &res)
		case ev.IsDir:
			files, err := listFiles(filepath.Join(s.root, filepath.FromSlash(ev.Path)))
			if err != nil {
				s.logger.Warn("documents_sync_skipped", slog.String("path", ev.Path), slog.String("error", err.Error()))
				res.Failed++
				continue
			}
			for _, f := range files {
				if rel := relPath(s.root, f); s.include(rel) {
					s.reload(rel, &res)
				}
			}
		case s.include(ev.Path):
			s.reload(ev.Path, &res)
		}
	}

	if !res.changed() {
		return res, nil
	}
	if _, err := s.store.Rebuild(ctx); err != nil {
		return res, err
	}
	s.logger.Info("documents_synced",
		slog.Int("events", len(batch)),
		slog.Int("upserted", res.Upserted),
		slog.Int("removed", res.Removed),
		slog.Int("failed", res.Failed))
	return res, nil
}

// reload reads one file and replaces the documents it owns.
func (s *docSync) reload(rel string, res *syncResult) {
	docs, err := loadFile(s.root, filepath.Join(s.root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		s.forget(rel, res)
		return
	}
	if err != nil {
		s.logger.Warn("documents_sync_skipped", slog.String("path", rel), slog.String("error", err.Error()))
		res.Failed++
		return
	}

	keep := make(map[string]bool, len(docs))
	for _, d := range docs {
		keep[d.ID] = true
	}
	for _, id := range s.owned[rel] {
		if !keep[id] && s.store.Remove(id) {
			res.Removed++
		}
	}

	var ids []string
	for _, d := range docs {
		if _, err := s.store.Upsert(d); err != nil {
			s.logger.Warn("documents_sync_skipped",
				slog.String("path", rel),
				slog.String("document", d.ID),
				slog.String("error", err.Error()))
			res.Failed++
			continue
		}
		ids = append(ids, d.ID)
		res.Upserted++
	}
	s.owned[rel] = ids
}

// forget removes the documents of rel, or of every file below it when rel
// was a directory.
func (s *docSync) forget(rel string, res *syncResult) {
	prefix := strings.TrimSuffix(rel, "/") + "/"
	for file, ids := range s.owned {
		if file != rel && !strings.HasPrefix(file, prefix) {
			continue
		}
		for _, id := range ids {
			if s.store.Remove(id) {
				res.Removed++
			}
		}
		delete(s.owned, file)
	}
}

func docIDs(docs []retriever.Document) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids
}
