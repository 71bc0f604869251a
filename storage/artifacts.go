package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"chatbot/model"
)

// RequestArtifact is the structured dump of one outgoing request.
type RequestArtifact struct {
	ExchangeID  string          `json:"exchange_id"`
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
	Attempt     int             `json:"attempt"`
	Messages    []model.Message `json:"messages"`
}

// ResponseArtifact is the structured dump of one successful response.
type ResponseArtifact struct {
	ExchangeID      string          `json:"exchange_id"`
	Model           string          `json:"model"`
	Temperature     float64         `json:"temperature"`
	Attempt         int             `json:"attempt"`
	Text            string          `json:"text"`
	TotalTokens     int64           `json:"total_tokens,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

// ArtifactLogger writes every request and response as a pair of files: a
// pretty-printed JSON dump and a human-readable Markdown transcript.
type ArtifactLogger struct {
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

// NewArtifactLogger creates a logger writing under dir. The directory is
// created on first write.
func NewArtifactLogger(dir string, logger *zap.Logger) *ArtifactLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArtifactLogger{
		dir:    dir,
		now:    time.Now,
		logger: logger,
	}
}

// Dir returns the artifact directory.
func (l *ArtifactLogger) Dir() string {
	return l.dir
}

// LogRequest writes <timestamp><label>.json and .md for req.
func (l *ArtifactLogger) LogRequest(req RequestArtifact, label string) error {
	if req.Messages == nil {
		req.Messages = []model.Message{}
	}

	var md strings.Builder
	writeTranscript(&md, req.Messages)

	return l.write(label, req, md.String())
}

// LogResponse writes <timestamp><label>.json and .md for resp.
func (l *ArtifactLogger) LogResponse(resp ResponseArtifact, label string) error {
	if len(resp.Raw) > 0 && !json.Valid(resp.Raw) {
		resp.Raw = nil
	}

	var md strings.Builder
	fmt.Fprintf(&md, "- Model      : %s\n", resp.Model)
	fmt.Fprintf(&md, "- Temperature: %v\n", resp.Temperature)
	if resp.TotalTokens > 0 {
		fmt.Fprintf(&md, "- Tokens     : %d\n", resp.TotalTokens)
	}
	fmt.Fprintf(&md, "- Duration   : %.2f\n", resp.DurationSeconds)
	md.WriteString("\n\n")
	writeTranscript(&md, []model.Message{model.NewMessage(model.RoleAssistant, resp.Text)})

	return l.write(label, resp, md.String())
}

// write stores both representations. Both files are attempted even if the
// first one fails; the returned error joins every failure.
func (l *ArtifactLogger) write(label string, structured any, transcript string) error {
	// 0700 - artifacts contain the full conversation
	if err := os.MkdirAll(l.dir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	base := uniqueBase(l.dir, l.now(), label, ".json", ".md")

	var errs []error

	data, err := json.MarshalIndent(structured, "", "    ")
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to marshal artifact: %w", err))
	} else if err := os.WriteFile(base+".json", data, 0600); err != nil {
		errs = append(errs, fmt.Errorf("failed to write artifact: %w", err))
	}

	if err := os.WriteFile(base+".md", []byte(transcript), 0600); err != nil {
		errs = append(errs, fmt.Errorf("failed to write transcript: %w", err))
	}

	if len(errs) == 0 {
		l.logger.Debug("artifact written", zap.String("path", base))
	}

	return errors.Join(errs...)
}

// writeTranscript renders messages as "# ROLE:\ncontent\n\n" blocks.
func writeTranscript(b *strings.Builder, messages []model.Message) {
	for _, msg := range messages {
		fmt.Fprintf(b, "# %s:\n%s\n\n", strings.ToUpper(string(msg.Role)), msg.Content)
	}
}

// ReadRequestArtifact parses a request JSON artifact back into the messages
// that were sent.
func ReadRequestArtifact(path string) ([]model.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var req RequestArtifact
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
	}

	return req.Messages, nil
}
