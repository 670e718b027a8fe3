package corpus

import (
	"slices"
	"sync"

	"github.com/Aman-CERP/lexrag/internal/chunk"
	lexerrors "github.com/Aman-CERP/lexrag/internal/errors"
)

type entry struct {
	doc    Document
	chunks []*chunk.Chunk // nil until the next index build fills it
}

// Corpus is the ordered set of documents. It is safe for concurrent use.
//
// Every mutation bumps Version so index snapshots can tell they are stale.
// Chunk caching does not count as a mutation.
type Corpus struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	version uint64
}

// New creates an empty corpus.
func New() *Corpus {
	return &Corpus{entries: make(map[string]*entry)}
}

// Add inserts a new document. The ID must be non-empty and unused.
func (c *Corpus) Add(doc Document) error {
	if err := validate(doc); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[doc.ID]; exists {
		return lexerrors.New(lexerrors.ErrCodeDuplicateDocument, "document already exists: "+doc.ID, nil).
			WithDetail("id", doc.ID).
			WithSuggestion("Use Upsert to replace an existing document")
	}
	c.insertLocked(doc)
	return nil
}

// Upsert inserts doc or replaces the document with the same ID, keeping its
// position. Cached chunks survive only if the text is unchanged. It reports
// whether an existing document was replaced.
func (c *Corpus) Upsert(doc Document) (bool, error) {
	if err := validate(doc); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[doc.ID]
	if !exists {
		c.insertLocked(doc)
		return false, nil
	}
	if e.doc.Text != doc.Text {
		e.chunks = nil
	}
	e.doc = doc
	c.version++
	return true, nil
}

// Remove deletes a document and its cached chunks.
func (c *Corpus) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(func(d Document) bool { return d.ID == id }) > 0
}

// RemoveSource deletes every document that came from sourceID and returns
// how many were removed.
func (c *Corpus) RemoveSource(sourceID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(func(d Document) bool { return d.SourceID == sourceID })
}

// Reset removes all documents.
func (c *Corpus) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.entries = make(map[string]*entry)
	c.version++
}

// Replace swaps the whole document set. Cached chunks are reused for
// documents whose ID and text are unchanged. The profile document is kept
// unless docs carries one with the same ID.
func (c *Corpus) Replace(docs []Document) error {
	for _, d := range docs {
		if err := validate(d); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	order := make([]string, 0, len(docs))
	entries := make(map[string]*entry, len(docs))
	for _, d := range docs {
		if _, dup := entries[d.ID]; dup {
			return lexerrors.New(lexerrors.ErrCodeDuplicateDocument, "duplicate document id: "+d.ID, nil).
				WithDetail("id", d.ID)
		}
		e := &entry{doc: d}
		if old, ok := c.entries[d.ID]; ok && old.doc.Text == d.Text {
			e.chunks = old.chunks
		}
		entries[d.ID] = e
		order = append(order, d.ID)
	}
	for _, id := range c.order {
		if old := c.entries[id]; old.doc.Meta && entries[id] == nil {
			entries[id] = old
			order = append(order, id)
		}
	}

	c.order = order
	c.entries = entries
	c.version++
	return nil
}

// SetProfile replaces the generated profile document. An empty profile
// removes it.
func (c *Corpus) SetProfile(p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(func(d Document) bool { return d.Meta })
	if p.IsEmpty() {
		return
	}
	c.insertLocked(p.Document())
}

// Documents returns a copy of the documents in insertion order.
func (c *Corpus) Documents() []Document {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, c.entries[id].doc)
	}
	return docs
}

// Get returns the document with the given ID.
func (c *Corpus) Get(id string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return Document{}, false
	}
	return e.doc, true
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Version returns the mutation counter.
func (c *Corpus) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// CachedChunks returns the cached chunks for a document, if any.
func (c *Corpus) CachedChunks(id string) ([]*chunk.Chunk, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || e.chunks == nil {
		return nil, false
	}
	return e.chunks, true
}

// CacheChunks stores chunks built from text. They are dropped if the
// document changed since text was read.
func (c *Corpus) CacheChunks(id, text string, chunks []*chunk.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || e.doc.Text != text {
		return
	}
	if chunks == nil {
		chunks = []*chunk.Chunk{}
	}
	e.chunks = chunks
}

func (c *Corpus) insertLocked(doc Document) {
	c.entries[doc.ID] = &entry{doc: doc}
	c.order = append(c.order, doc.ID)
	c.version++
}

func (c *Corpus) removeLocked(match func(Document) bool) int {
	removed := 0
	c.order = slices.DeleteFunc(c.order, func(id string) bool {
		if !match(c.entries[id].doc) {
			return false
		}
		delete(c.entries, id)
		removed++
		return true
	})
	if removed > 0 {
		c.version++
	}
	return removed
}

func validate(doc Document) error {
	if doc.ID == "" {
		return lexerrors.New(lexerrors.ErrCodeInvalidInput, "document id is required", nil).
			WithDetail("title", doc.Title)
	}
	return nil
}
