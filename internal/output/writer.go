// Package output materializes wiki pages on disk: published articles, stub
// pages, and the debug artifacts failed runs leave behind. File names are
// derived from page names deterministically so reruns land on the same path.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/plumeworks/plume/internal/logging"
	"github.com/plumeworks/plume/internal/wiki"
)

// DefaultExtension is used when no file extension is configured.
const DefaultExtension = ".txt"

// fallbackPageName names pages whose titles produce an empty stem.
const fallbackPageName = "UnnamedPage"

// debugMarker tags failure artifacts so discovery can exclude them.
const debugMarker = "_FAILED_"

// Writer writes wiki pages under a single output directory.
type Writer struct {
	dir    string
	ext    string
	logger *log.Logger
}

// WriterOption customizes a Writer.
type WriterOption func(*Writer)

// WithLogger replaces the default component logger.
func WithLogger(l *log.Logger) WriterOption {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWriter creates a writer rooted at dir. The extension is normalized to a
// leading dot; empty means DefaultExtension.
func NewWriter(dir, ext string, opts ...WriterOption) *Writer {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		ext = DefaultExtension
	} else if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	w := &Writer{dir: dir, ext: ext, logger: logging.New("output")}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Extension returns the normalized file extension, leading dot included.
func (w *Writer) Extension() string {
	return w.ext
}

// PagePath returns the path a page name maps to, without writing anything.
func (w *Writer) PagePath(pageName string) string {
	return filepath.Join(w.dir, w.stem(pageName)+w.ext)
}

func (w *Writer) stem(pageName string) string {
	stem := wiki.CamelCase(pageName)
	if stem == "" {
		stem = fallbackPageName
	}
	return stem
}

// WritePage writes article content to its derived path, creating the output
// directory on demand. Content is stored with exactly one trailing newline
// and nothing else added.
func (w *Writer) WritePage(pageName, content string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("output: creating %s: %w", w.dir, err)
	}
	path := w.PagePath(pageName)
	data := strings.TrimRight(content, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return "", fmt.Errorf("output: writing %s: %w", filepath.Base(path), err)
	}
	w.logger.Debug("wrote page", "path", path, "bytes", len(data))
	return path, nil
}

// ReadPage reads a page by stem (file name without extension).
func (w *Writer) ReadPage(stem string) (string, error) {
	path := filepath.Join(w.dir, stem+w.ext)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("output: reading %s: %w", stem, err)
	}
	return string(data), nil
}

// DiscoverExistingPages returns the sorted stems of every page in the output
// directory. Debug artifacts from failed runs are excluded. A missing
// directory discovers as empty.
func (w *Writer) DiscoverExistingPages() ([]string, error) {
	if _, err := os.Stat(w.dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(w.dir), "*"+w.ext)
	if err != nil {
		return nil, fmt.Errorf("output: scanning %s: %w", w.dir, err)
	}
	var stems []string
	for _, m := range matches {
		stem := strings.TrimSuffix(m, w.ext)
		if strings.Contains(stem, debugMarker) {
			continue
		}
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	return stems, nil
}
