package mcp

import (
	"fmt"
	"strings"
)

// FormatSearchResults renders a search result as markdown for clients that
// only read text content.
func FormatSearchResults(out SearchOutput) string {
	if len(out.Hits) == 0 {
		return fmt.Sprintf("No results found for \"%s\"", out.Query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search Results for \"%s\"\n\n", out.Query)
	fmt.Fprintf(&sb, "Found %d result", len(out.Hits))
	if len(out.Hits) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	if out.Hits[0].Degraded {
		sb.WriteString("_No passage cleared the relevance threshold; these are the closest matches._\n\n")
	}
	if len(out.Terms) > 0 {
		fmt.Fprintf(&sb, "Terms: `%s`\n\n", strings.Join(out.Terms, " "))
	}

	for _, h := range out.Hits {
		title := h.Title
		if title == "" {
			title = h.DocumentID
		}
		fmt.Fprintf(&sb, "### %d. %s (score: %.2f)\n", h.Rank, title, h.Score)
		fmt.Fprintf(&sb, "`%s`\n\n", h.ChunkID)
		sb.WriteString(strings.TrimSpace(h.Text))
		sb.WriteString("\n\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}
