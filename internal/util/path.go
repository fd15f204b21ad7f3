package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

// ErrInvalidFilename is returned when nothing usable is left of an upload name.
var ErrInvalidFilename = errors.New("invalid filename")

// SanitizeFilename reduces a client-supplied upload name to its last path
// element. Windows browsers may send the full path with backslashes.
// Control characters are dropped.
func SanitizeFilename(filename string) (string, error) {
	name := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filename)
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimSpace(name)

	switch name {
	case "", ".", "..", "/":
		return "", ErrInvalidFilename
	}
	return name, nil
}
