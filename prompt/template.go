// Package prompt builds the per-exchange system turn from a template file
// and the scratchpad buffer.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatbot/model"
)

// DefaultMarker is replaced with the scratchpad contents.
const DefaultMarker = "<<CODE>>"

// Template renders the system message. Both files are re-read on every
// call, so edits to either take effect on the next exchange.
type Template struct {
	templatePath   string
	scratchpadPath string
	marker         string
}

// NewTemplate creates a Template reading templatePath and scratchpadPath.
func NewTemplate(templatePath, scratchpadPath string) *Template {
	return &Template{
		templatePath:   templatePath,
		scratchpadPath: scratchpadPath,
		marker:         DefaultMarker,
	}
}

// ScratchpadPath returns the scratchpad file.
func (t *Template) ScratchpadPath() string {
	return t.scratchpadPath
}

// Render returns the template with the marker replaced by the scratchpad.
// A missing template is an error; a missing scratchpad counts as empty.
func (t *Template) Render() (string, error) {
	tmpl, err := readText(t.templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read system message template: %w", err)
	}

	scratch, err := readText(t.scratchpadPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read scratchpad: %w", err)
	}

	return strings.ReplaceAll(tmpl, t.marker, scratch), nil
}

// SystemMessage renders the template as a system turn.
func (t *Template) SystemMessage() (model.Message, error) {
	content, err := t.Render()
	if err != nil {
		return model.Message{}, err
	}
	return model.NewMessage(model.RoleSystem, content), nil
}

// SaveScratchpad replaces the scratchpad with text, dropping a trailing END
// terminator and surrounding whitespace.
func (t *Template) SaveScratchpad(text string) error {
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(strings.TrimSuffix(text, "END"))

	if dir := filepath.Dir(t.scratchpadPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create scratchpad directory: %w", err)
		}
	}

	if err := os.WriteFile(t.scratchpadPath, []byte(text), 0600); err != nil {
		return fmt.Errorf("failed to write scratchpad: %w", err)
	}

	return nil
}

// readText reads a UTF-8 text file, dropping invalid byte sequences.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
