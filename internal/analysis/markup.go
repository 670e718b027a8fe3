package analysis

import (
	"regexp"
	"strings"
)

// Pre-compiled expressions for markup cleanup.
var (
	scriptTag    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag  = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	entities     = regexp.MustCompile(`(?i)&(?:[a-z]+|#[0-9]+|#x[0-9a-f]+);`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// StripMarkup removes HTML tags, script/style bodies, comments and character
// entities, then collapses runs of whitespace into single spaces.
//
// It is meant for text that may still carry markup. Removed constructs are
// replaced by a space so adjacent words never fuse.
func StripMarkup(text string) string {
	if text == "" {
		return ""
	}
	out := scriptTag.ReplaceAllString(text, " ")
	out = styleTag.ReplaceAllString(out, " ")
	out = noscriptTag.ReplaceAllString(out, " ")
	out = htmlComments.ReplaceAllString(out, " ")
	out = allTags.ReplaceAllString(out, " ")
	out = entities.ReplaceAllString(out, " ")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
