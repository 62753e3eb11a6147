package lsp

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/uri"
)

// uriToPath converts a file URI, or a bare path, into an absolute path.
// Other schemes yield "".
func uriToPath(raw string) string {
	if raw == "" {
		return ""
	}
	path := raw
	if strings.Contains(raw, "://") {
		if !strings.HasPrefix(raw, uri.FileScheme+"://") {
			return ""
		}
		u, err := uri.Parse(raw)
		if err != nil {
			return ""
		}
		path = u.Filename()
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return string(uri.File(path))
}
