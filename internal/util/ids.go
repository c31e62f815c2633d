package util

import (
	"path"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IDs use an alphanumeric alphabet so they never contain the "-" used as
// separator in graph link keys.
const (
	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	idLength   = 21
)

// NewID returns a random record id.
func NewID() (string, error) {
	return gonanoid.Generate(idAlphabet, idLength)
}

// NewStorageKey returns a fresh object key below the uploads prefix. The
// extension of fileName is kept so downloads get a sensible content type.
func NewStorageKey(fileName string) (string, error) {
	id, err := NewID()
	if err != nil {
		return "", err
	}
	return "uploads/" + id + FileExt(fileName), nil
}

// FileExt returns the lowercased extension of name including the dot, or ""
// when name has none or the extension contains unexpected characters.
func FileExt(name string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(name)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
