package lsp

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI canonicalizes path to an absolute, symlink-resolved form and
// returns its file:// URI. It never fails on a well-formed input; malformed
// inputs are returned percent-encoded as-is.
func PathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	abs = filepath.ToSlash(abs)

	if runtime.GOOS == "windows" || (len(abs) >= 2 && abs[1] == ':') {
		if !strings.HasPrefix(abs, "/") {
			abs = "/" + abs
		}
	}

	u := url.URL{Scheme: "file", Path: abs}
	return u.String()
}

// URIToPath inverts PathToURI. Returns an error if uri is not a file: URI.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", &InvalidURIError{URI: uri}
	}
	p := u.Path
	// Strip a leading slash before a drive letter (file:///C:/foo -> C:/foo).
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}

// InvalidURIError is returned by URIToPath for any non file: scheme.
type InvalidURIError struct{ URI string }

func (e *InvalidURIError) Error() string {
	return "not a file URI: " + e.URI
}

// ToWirePosition converts a 1-based user position to the 0-based position
// the LSP wire format expects.
func ToWirePosition(line, column int) (uint32, uint32) {
	return uint32(line - 1), uint32(column - 1)
}

// FromWirePosition converts a 0-based wire position back to 1-based user
// coordinates.
func FromWirePosition(line, character uint32) (int, int) {
	return int(line) + 1, int(character) + 1
}

// LanguageIDForPath derives the LSP languageId to announce when opening a
// file, based on its extension.
func LanguageIDForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpr":
		return "gpr"
	case ".ads", ".adb":
		return "ada"
	default:
		return "ada"
	}
}
