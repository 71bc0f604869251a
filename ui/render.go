package ui

import (
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
)

// TerminalWidth returns the width of the terminal attached to stdout, or 0
// when stdout is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// EffectiveWidth returns the configured wrap width, narrowed to the terminal
// width when that is known and smaller.
func EffectiveWidth(configured, terminal int) int {
	width := configured
	if width <= 0 {
		width = 120
	}
	if terminal > 0 && terminal < width {
		width = terminal
	}
	return width
}

// WrapResponse wraps every line of text to width separately, so paragraph
// breaks and blank lines survive.
func WrapResponse(text string, width int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapText(line, width)...)
	}
	return strings.Join(out, "\n")
}

// wrapText word-wraps one line by display width. Words wider than width are
// split.
func wrapText(text string, width int) []string {
	if width < 1 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine string

	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)
		currentWidth := runewidth.StringWidth(currentLine)

		if wordWidth > width {
			if currentLine != "" {
				lines = append(lines, currentLine)
				currentLine = ""
			}
			for wordWidth > width {
				chunk := runewidth.Truncate(word, width, "")
				if chunk == "" {
					// a single rune wider than width
					_, size := utf8.DecodeRuneInString(word)
					chunk = word[:size]
				}
				lines = append(lines, chunk)
				word = word[len(chunk):]
				wordWidth = runewidth.StringWidth(word)
			}
			currentLine = word
		} else if currentWidth+wordWidth+1 <= width || currentLine == "" {
			if currentLine != "" {
				currentLine += " "
			}
			currentLine += word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return lines
}

// RenderMarkdown renders text for the terminal with go-term-markdown.
// Autolinks are disabled so terminals can detect URLs themselves.
func RenderMarkdown(text string, width int) string {
	text = preprocessLinks(text)

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width, 0)
	doc := p.Parse([]byte(text))
	rendered := gomarkdown.Render(doc, r)

	return frameCodeBlocks(fixInlineCode(string(rendered)), width)
}

func preprocessLinks(content string) string {
	// [text](url) → url
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Blue background + italic → red text
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

// frameCodeBlocks replaces the ┃ gutter of rendered code blocks with a
// horizontal rule above and below the block.
func frameCodeBlocks(s string, width int) string {
	const gutter = "┃"
	border := "\x1b[90m" + strings.Repeat("━", max(width, 4)) + "\x1b[0m"

	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		idx := strings.Index(line, gutter)
		if idx >= 0 {
			if !inCodeBlock {
				inCodeBlock = true
				result = append(result, border)
			}
			line = strings.TrimPrefix(line[idx+len(gutter):], " ")
			result = append(result, line)
			continue
		}
		if inCodeBlock {
			inCodeBlock = false
			result = append(result, border)
		}
		result = append(result, line)
	}

	if inCodeBlock {
		result = append(result, border)
	}

	return strings.Join(result, "\n")
}
