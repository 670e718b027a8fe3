// Package output renders search results and status lines for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/lexrag/internal/index"
	"github.com/Aman-CERP/lexrag/internal/search"
)

// Format selects how results are written.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (use text or json)", s)
	}
}

// DefaultSnippetRunes caps the chunk text shown per hit in text output.
const DefaultSnippetRunes = 240

// Writer provides formatted output for the CLI.
type Writer struct {
	out     io.Writer
	styles  Styles
	snippet int
}

// New creates a Writer that uses color only when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, IsTTY(out) && !NoColor())
}

// NewWithColor creates a Writer with color forced on or off.
func NewWithColor(out io.Writer, color bool) *Writer {
	styles := PlainStyles()
	if color {
		styles = ColorStyles()
	}
	return &Writer{out: out, styles: styles, snippet: DefaultSnippetRunes}
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NoColor reports whether the NO_COLOR environment variable is set.
func NoColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

// Status prints a message with an icon. Write errors are ignored for
// console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Error.Render("✗"), msg)
}

// HitView is the serialized form of a search hit.
type HitView struct {
	Rank       int     `json:"rank"`
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title,omitempty"`
	SourceID   string  `json:"source_id,omitempty"`
	Score      float64 `json:"score"`
	Cosine     float64 `json:"cosine"`
	Jaccard    float64 `json:"jaccard"`
	BM25       float64 `json:"bm25"`
	BM25Norm   float64 `json:"bm25_norm"`
	Degraded   bool    `json:"degraded,omitempty"`
	Text       string  `json:"text"`
}

// SearchResult is the serialized form of one search call.
type SearchResult struct {
	Query string    `json:"query"`
	Terms []string  `json:"terms,omitempty"`
	Hits  []HitView `json:"hits"`
}

// Views converts hits into their serialized form, ranked from 1.
func Views(hits []search.Hit) []HitView {
	views := make([]HitView, 0, len(hits))
	for i, h := range hits {
		v := HitView{
			Rank:     i + 1,
			Score:    h.Score,
			Cosine:   h.Cosine,
			Jaccard:  h.Jaccard,
			BM25:     h.BM25,
			BM25Norm: h.BM25Norm,
			Degraded: h.Degraded,
		}
		if h.Chunk != nil {
			v.ChunkID = h.Chunk.ID
			v.DocumentID = h.Chunk.DocumentID
			v.Text = h.Chunk.Text
		}
		if h.Document != nil {
			v.Title = h.Document.Title
			v.SourceID = h.Document.SourceID
		}
		views = append(views, v)
	}
	return views
}

// Hits writes a search result in the given format. terms may be nil.
func (w *Writer) Hits(format Format, query string, terms []string, hits []search.Hit) error {
	result := SearchResult{Query: query, Terms: terms, Hits: Views(hits)}
	if format == FormatJSON {
		return w.json(result)
	}
	w.hitsText(result)
	return nil
}

func (w *Writer) hitsText(r SearchResult) {
	s := w.styles
	if len(r.Hits) == 0 {
		w.Warningf("No results for %q", r.Query)
		return
	}

	_, _ = fmt.Fprintf(w.out, "%s %s\n", s.Header.Render("Results for"), r.Query)
	if len(r.Terms) > 0 {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", s.Label.Render("terms:"), s.Dim.Render(strings.Join(r.Terms, " ")))
	}
	if r.Hits[0].Degraded {
		w.Warning("No result cleared the threshold; showing relaxed matches")
	}
	_, _ = fmt.Fprintln(w.out)

	for _, h := range r.Hits {
		title := h.Title
		if title == "" {
			title = h.DocumentID
		}
		_, _ = fmt.Fprintf(w.out, "%s %s %s %s\n",
			s.Rank.Render(fmt.Sprintf("%2d.", h.Rank)),
			s.Title.Render(title),
			s.Dim.Render("("+h.ChunkID+")"),
			s.Score.Render(fmt.Sprintf("%.3f", h.Score)))
		_, _ = fmt.Fprintf(w.out, "    %s\n", s.Label.Render(fmt.Sprintf(
			"cos=%.3f jac=%.3f bm25=%.3f (%.3f)", h.Cosine, h.Jaccard, h.BM25, h.BM25Norm)))
		_, _ = fmt.Fprintln(w.out, s.Snippet.Render(Truncate(h.Text, w.snippet)))
	}
}

// Stats writes index statistics in the given format.
func (w *Writer) Stats(format Format, st index.Stats) error {
	if format == FormatJSON {
		return w.json(st)
	}
	s := w.styles
	rows := [][2]string{
		{"generation", fmt.Sprintf("%d", st.Generation)},
		{"documents", fmt.Sprintf("%d", st.Documents)},
		{"chunks", fmt.Sprintf("%d", st.Chunks)},
		{"terms", fmt.Sprintf("%d", st.Terms)},
		{"avg chunk length", fmt.Sprintf("%.1f", st.AvgChunkLength)},
		{"build time", st.Duration.String()},
	}
	_, _ = fmt.Fprintln(w.out, s.Header.Render("Index"))
	for _, r := range rows {
		_, _ = fmt.Fprintf(w.out, "  %s %s\n", s.Label.Render(fmt.Sprintf("%-17s", r[0])), r[1])
	}
	return nil
}

func (w *Writer) json(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// Truncate shortens s to at most n runes, ending in an ellipsis when cut.
// Whitespace runs are collapsed first.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:n-1]), " ") + "…"
}
