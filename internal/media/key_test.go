package media

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Anillo Obsidiana.JPG":        "anillo-obsidiana.jpg",
		"collar   dorado (1).png":     "collar-dorado-1-.png",
		"Piña Colada.webp":            "pina-colada.webp",
		`C:\fakepath\aretes.gif`:      "aretes.gif",
		"../../etc/passwd":            "passwd",
		"":                            "image",
		".png":                        "image.png",
		"???":                         "image",
		"brazalete__plata--2024.jpeg": "brazalete__plata-2024.jpeg",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeName(in), "input %q", in)
	}
}

func TestSanitizeNameTruncatesKeepingExtension(t *testing.T) {
	got := SanitizeName(strings.Repeat("a", 200) + ".png")
	assert.LessOrEqual(t, len(got), maxNameLength)
	assert.True(t, strings.HasSuffix(got, ".png"))
}

func TestObjectKeyPrefixesTimestamp(t *testing.T) {
	now := time.UnixMilli(1760000000123)
	assert.Equal(t, "1760000000123-ring.png", ObjectKey(now, "Ring.png"))
}
