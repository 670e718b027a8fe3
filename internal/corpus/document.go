// Package corpus owns the document set and the per-document chunk cache.
package corpus

// Document is a unit of ingested text. Text is expected to be plain text;
// markup is stripped by the loader before it gets here.
type Document struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	Text     string `json:"text" yaml:"text"`

	// Meta marks generated documents such as the bot profile.
	Meta bool `json:"meta,omitempty" yaml:"meta,omitempty"`
}
