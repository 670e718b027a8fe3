package corpus

import "strings"

// Identity of the generated profile document.
const (
	ProfileID       = "profile"
	ProfileTitle    = "Perfil del bot"
	ProfileSourceID = "meta"
)

// Profile describes the assistant that answers from the corpus. Its goal,
// notes and system prompt are indexed like any other document so questions
// about the assistant itself can be answered.
type Profile struct {
	Name   string `yaml:"name"`
	Goal   string `yaml:"goal"`
	Notes  string `yaml:"notes"`
	System string `yaml:"system"`
}

// IsEmpty reports whether the profile has no indexable text.
func (p Profile) IsEmpty() bool {
	return strings.TrimSpace(p.Goal) == "" &&
		strings.TrimSpace(p.Notes) == "" &&
		strings.TrimSpace(p.System) == ""
}

// Text renders the profile sections separated by blank lines.
func (p Profile) Text() string {
	var sections []string
	add := func(label, body string) {
		if body = strings.TrimSpace(body); body != "" {
			sections = append(sections, label+":\n"+body)
		}
	}
	add("OBJETIVO", p.Goal)
	add("NOTAS", p.Notes)
	add("SISTEMA", p.System)
	return strings.Join(sections, "\n\n")
}

// Document returns the profile as a meta document.
func (p Profile) Document() Document {
	return Document{
		ID:       ProfileID,
		Title:    ProfileTitle,
		SourceID: ProfileSourceID,
		Text:     p.Text(),
		Meta:     true,
	}
}
