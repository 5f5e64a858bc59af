package storage

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultName = "upload"
	maxNameLen  = 100
)

// CleanName turns a client-supplied file name into a safe base name made of
// ASCII letters, digits, dots, dashes and underscores. Accents are folded
// (é becomes e) and directory components are dropped.
func CleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, name); err == nil {
		name = folded
	}
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return defaultName
	}
	if len(out) > maxNameLen {
		ext := path.Ext(out)
		if len(ext) >= maxNameLen {
			ext = ""
		}
		out = out[:maxNameLen-len(ext)] + ext
	}
	return out
}
