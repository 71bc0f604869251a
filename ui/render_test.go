package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "short line", 20, []string{"short line"}},
		{"wraps on words", "the quick brown fox jumps", 10, []string{"the quick", "brown fox", "jumps"}},
		{"splits long words", "abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
		{"zero width disables wrapping", "anything goes", 0, []string{"anything goes"}},
		{"wide runes", "日本語のテキスト", 6, []string{"日本語", "のテキ", "スト"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width))
		})
	}
}

func TestWrapResponseKeepsParagraphs(t *testing.T) {
	text := "first paragraph is long enough to wrap\n\nsecond"
	got := WrapResponse(text, 20)

	assert.Equal(t, "first paragraph is\nlong enough to wrap\n\nsecond", got)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 20)
	}
}

func TestWrapResponseDefaultWidth(t *testing.T) {
	line := strings.Repeat("word ", 40)
	for _, l := range strings.Split(WrapResponse(line, EffectiveWidth(0, 0)), "\n") {
		assert.LessOrEqual(t, len(l), 120)
	}
}

func TestEffectiveWidth(t *testing.T) {
	assert.Equal(t, 120, EffectiveWidth(120, 0))
	assert.Equal(t, 80, EffectiveWidth(120, 80))
	assert.Equal(t, 120, EffectiveWidth(120, 200))
	assert.Equal(t, 120, EffectiveWidth(0, 0))
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Title\n\nSee [docs](https://example.com/docs).", 80)

	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "https://example.com/docs")
	assert.NotContains(t, out, "[docs]")
}

func TestFrameCodeBlocks(t *testing.T) {
	in := "before\n┃ x := 1\n┃ y := 2\nafter"
	out := frameCodeBlocks(in, 10)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "before", lines[0])
	assert.Contains(t, lines[1], "━")
	assert.Equal(t, "x := 1", lines[2])
	assert.Equal(t, "y := 2", lines[3])
	assert.Contains(t, lines[4], "━")
	assert.Equal(t, "after", lines[5])
}

func TestFormatCommands(t *testing.T) {
	out := FormatCommands("END", "Exit", "RESET", "Forget")
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  END    "))
}
