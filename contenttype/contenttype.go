// Package contenttype classifies artifact content by sniffing its magic
// bytes. Extensions are only consulted to refine generic text, because
// generated artifacts often carry misleading or missing extensions.
package contenttype

import (
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

// Fallback is returned for empty or unrecognised content.
const Fallback = "application/octet-stream"

// weakText lists sniffed types that only say "this is text"; the
// extension may refine them. Types with real signatures (html, json, xml)
// always win over the extension.
var weakText = []string{"text/plain", "text/csv", "text/tab-separated-values"}

// textRefinements maps extensions of text formats that carry no magic
// bytes to their media type.
var textRefinements = map[string]string{
	".css":      "text/css",
	".js":       "application/javascript",
	".json":     "application/json",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".rs":       "text/rust",
	".toml":     "text/toml",
	".svg":      "image/svg+xml",
	".html":     "text/html",
	".htm":      "text/html",
}

// Detect returns the media type of content, without parameters. name is
// only used for its extension. Detect never fails.
func Detect(name string, content []byte) string {
	if len(content) == 0 {
		return Fallback
	}

	detected := mimetype.Detect(content)
	if isWeakText(detected) {
		if refined, ok := textRefinements[strings.ToLower(path.Ext(name))]; ok {
			return refined
		}
	}
	return essence(detected.String())
}

// DetectFile reads the file at p from fs and classifies it. The returned
// content is the full file, so callers store what was classified.
func DetectFile(fs afero.Fs, p string) (string, []byte, error) {
	content, err := afero.ReadFile(fs, p)
	if err != nil {
		return "", nil, fmt.Errorf("contenttype: read %s: %w", p, err)
	}
	return Detect(p, content), content, nil
}

func isWeakText(m *mimetype.MIME) bool {
	for _, t := range weakText {
		if m.Is(t) {
			return true
		}
	}
	return false
}

func essence(mt string) string {
	base, _, _ := strings.Cut(mt, ";")
	base = strings.TrimSpace(base)
	if base == "" {
		return Fallback
	}
	return base
}
