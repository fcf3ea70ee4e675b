package favourites

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permission modes for the seeded favourites file.
const (
	dirPermissions  = 0750
	filePermissions = 0600
)

// starterContent is written when the favourites file does not exist yet.
// It documents the format and gives the user something to edit.
const starterContent = `# Bravia bridge favourites
# One broadcast channel per line: Name=Number
# Lines starting with # and blank lines are ignored.
BBC One=1
BBC Two=2
ITV=3
`

// Favourite is one curated broadcast channel.
type Favourite struct {
	// Name is the display name shown as the input label.
	Name string

	// Number is the normalized decimal channel number (no leading zeros).
	Number string
}

// NormalizeNumber canonicalises a channel number string.
//
// Leading zeros are stripped ("007" -> "7"); an all-zero input collapses
// to "0". Input that is not entirely digits is returned trimmed but
// otherwise unchanged, so lookups simply miss instead of corrupting keys.
func NormalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if !isDigits(s) {
		return s
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// isDigits reports whether s is non-empty and consists only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Load reads the favourites file and returns the ordered list.
//
// Lines are split on any terminator and trimmed. Blank lines and lines
// starting with # are skipped. A valid line is NAME=NUMBER where the
// first = is the splitter, the name is non-empty, and the number is all
// digits; anything else is skipped, not fatal. Loading stops once max
// favourites are collected (max <= 0 means no cap).
//
// On read failure the returned list is empty and the error describes the
// failure; callers log it and carry on with no favourites.
func Load(path string, max int) ([]Favourite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading favourites file: %w", err)
	}

	lines := strings.FieldsFunc(string(data), func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	var favs []Favourite
	for _, line := range lines {
		if max > 0 && len(favs) >= max {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, number, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		number = strings.TrimSpace(number)
		if name == "" || !isDigits(number) {
			continue
		}

		favs = append(favs, Favourite{
			Name:   name,
			Number: NormalizeNumber(number),
		})
	}

	return favs, nil
}

// Ensure creates the favourites file with starter content if it does not
// exist, creating parent directories as needed. An existing file is left
// untouched.
func Ensure(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking favourites file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("creating favourites directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(starterContent), filePermissions); err != nil {
		return fmt.Errorf("writing starter favourites: %w", err)
	}
	return nil
}
