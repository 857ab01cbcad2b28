package media

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxNameLength = 80

// ObjectKey names an upload so two files with the same original name never
// collide: "<unix millis>-<sanitized name>".
func ObjectKey(now time.Time, originalName string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), SanitizeName(originalName))
}

// SanitizeName lowercases name, strips accents and replaces every character
// outside [a-z0-9._-] with a dash.
func SanitizeName(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}

	var b strings.Builder
	lastDash := false
	for _, r := range norm.NFD.String(strings.ToLower(base)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}

	out := strings.TrimRight(strings.Trim(b.String(), "-"), ".")
	if len(out) > maxNameLength {
		ext := path.Ext(out)
		if len(ext) >= maxNameLength {
			ext = ""
		}
		out = strings.TrimRight(out[:maxNameLength-len(ext)], "-.") + ext
	}
	if out == "" || strings.HasPrefix(out, ".") {
		out = "image" + out
	}
	return out
}
