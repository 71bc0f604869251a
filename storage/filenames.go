package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// TimestampLayout prefixes every artifact file name.
const TimestampLayout = "20060102_150405"

// SanitizeLabel removes or replaces characters that are invalid in filenames.
// Model names such as "meta-llama/llama-3.2" end up in labels.
func SanitizeLabel(label string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
		"|", "-",
		" ", "-",
		"\n", "-",
		"\r", "-",
	)
	label = replacer.Replace(label)

	// Limit length without splitting a rune
	if len(label) > 80 {
		cut := 80
		for cut > 0 && !utf8.RuneStart(label[cut]) {
			cut--
		}
		label = label[:cut]
	}

	return label
}

// uniqueBase returns dir/<timestamp><label> such that no file with any of
// the given extensions exists yet. Collisions within the same second get a
// numeric suffix.
func uniqueBase(dir string, now time.Time, label string, exts ...string) string {
	base := filepath.Join(dir, now.Format(TimestampLayout)+SanitizeLabel(label))
	candidate := base

	for n := 2; ; n++ {
		taken := false
		for _, ext := range exts {
			if _, err := os.Stat(candidate + ext); err == nil {
				taken = true
				break
			}
		}
		if !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
}
