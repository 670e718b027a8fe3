package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/lexrag/internal/analysis"
	lexerrors "github.com/Aman-CERP/lexrag/internal/errors"
	"github.com/Aman-CERP/lexrag/pkg/retriever"
)

// SourceFiles is the source ID given to documents read from disk.
const SourceFiles = "files"

var (
	htmlTitle = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	mdHeading = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// loadedFile is the documents read from one file.
type loadedFile struct {
	// Path is slash-separated and relative to the documents root.
	Path string
	Docs []retriever.Document
}

// docsRoot returns the directory documents are keyed against and, when path
// is a single file, that file's name relative to it.
func docsRoot(path string) (root, only string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", lexerrors.New(lexerrors.ErrCodeFileNotFound, "documents not found", err).
			WithDetail("path", path).
			WithSuggestion("Pass an existing directory or file with --docs")
	}
	if info.IsDir() {
		return path, "", nil
	}
	return filepath.Dir(path), filepath.Base(path), nil
}

// loadTree reads every supported file under path, in path order. Text,
// Markdown and HTML files become one document each, keyed by their
// slash-separated path relative to path. YAML and JSON files hold a list of
// documents. Hidden files and directories are skipped.
func loadTree(path string) ([]loadedFile, error) {
	root, only, err := docsRoot(path)
	if err != nil {
		return nil, err
	}

	var files []string
	if only != "" {
		files = []string{path}
	} else if files, err = listFiles(root); err != nil {
		return nil, err
	}

	loaded := make([]loadedFile, 0, len(files))
	for _, f := range files {
		docs, err := loadFile(root, f)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, loadedFile{Path: relPath(root, f), Docs: docs})
	}
	return loaded, nil
}

// documentsOf flattens files into one document list.
func documentsOf(files []loadedFile) []retriever.Document {
	var docs []retriever.Document
	for _, f := range files {
		docs = append(docs, f.Docs...)
	}
	return docs
}

// listFiles returns the supported, non-hidden files under dir, sorted.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && supported(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", ".html", ".htm", ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func loadFile(root, path string) ([]retriever.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".json":
		return decodeDocuments(path, ext, data)
	}

	rel := relPath(root, path)
	id := strings.TrimSuffix(rel, filepath.Ext(rel))
	text := string(data)
	title := ""

	switch ext {
	case ".html", ".htm":
		if m := htmlTitle.FindStringSubmatch(text); m != nil {
			title = analysis.StripMarkup(m[1])
		}
		text = analysis.StripMarkup(text)
	case ".md", ".markdown":
		if m := mdHeading.FindStringSubmatch(text); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}
	if title == "" {
		title = filepath.Base(id)
	}

	return []retriever.Document{{
		ID:       id,
		Title:    title,
		SourceID: SourceFiles,
		Text:     text,
	}}, nil
}

func decodeDocuments(path, ext string, data []byte) ([]retriever.Document, error) {
	var docs []retriever.Document
	var err error
	if ext == ".json" {
		err = json.Unmarshal(data, &docs)
	} else {
		err = yaml.Unmarshal(data, &docs)
	}
	if err != nil {
		return nil, lexerrors.New(lexerrors.ErrCodeInvalidInput, "failed to parse document list", err).
			WithDetail("path", path).
			WithSuggestion("Use a list of {id, title, text} entries")
	}
	for i := range docs {
		docs[i].Text = analysis.StripMarkup(docs[i].Text)
		if docs[i].SourceID == "" {
			docs[i].SourceID = filepath.Base(path)
		}
	}
	return docs, nil
}
