package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot/exchange"
	"chatbot/memory"
	"chatbot/model"
	"chatbot/prompt"
	"chatbot/provider/testutil"
)

type consoleFixture struct {
	console  *Console
	out      *bytes.Buffer
	provider *testutil.MockProvider
	history  *memory.History
	template *prompt.Template
	copied   []string
}

func newConsoleFixture(t *testing.T, input string, profile model.Profile) *consoleFixture {
	t.Helper()

	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "system_message.txt")
	require.NoError(t, os.WriteFile(tmplPath, []byte("Scratchpad:\n<<CODE>>"), 0600))

	f := &consoleFixture{
		out:      &bytes.Buffer{},
		provider: testutil.NewMockProvider("gpt-4").WithProfile(profile),
		history:  memory.NewHistory(memory.NewBudget(profile, 7500, 20)),
		template: prompt.NewTemplate(tmplPath, filepath.Join(dir, "scratchpad.md")),
	}

	controller := exchange.NewController(f.provider, exchange.Options{
		Sleep: func(time.Duration) {},
		Exit:  func(int) { t.Fatal("unexpected exit") },
	})

	settings := Settings{
		Model:       "gpt-4",
		Temperature: 0.1,
		Profile:     profile,
		WrapWidth:   120,
	}
	f.console = NewConsole(strings.NewReader(input), f.out, settings, controller, f.history, f.template, nil)
	f.console.terminalWidth = func() int { return 0 }
	f.console.copyText = func(s string) error {
		f.copied = append(f.copied, s)
		return nil
	}

	return f
}

func TestConsoleExchange(t *testing.T) {
	f := newConsoleFixture(t, "hi\nEND\n", model.TokenMetered)
	f.provider.CompleteFunc = testutil.Script(&model.Completion{Text: "Hello there!", TotalTokens: 31})

	require.NoError(t, f.console.Run(context.Background()))

	out := f.out.String()
	assert.Contains(t, out, "****** IMPORTANT ******")
	assert.Contains(t, out, "gpt-4: [NORMAL] USER:")
	assert.Contains(t, out, "CHATBOT response:\n\nHello there!")
	assert.Contains(t, out, "INFO: gpt-4: 31 tokens")
	assert.Contains(t, out, "Goodbye.")

	turns := f.history.Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, model.NewMessage(model.RoleUser, "hi"), turns[0])
	assert.Equal(t, model.NewMessage(model.RoleAssistant, "Hello there!"), turns[1])

	calls := f.provider.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 2)
	assert.Equal(t, model.NewMessage(model.RoleSystem, "Scratchpad:\n"), calls[0].Messages[1])
}

func TestConsoleIgnoresBlankInput(t *testing.T) {
	f := newConsoleFixture(t, "\n   \nEND\n", model.TokenMetered)

	require.NoError(t, f.console.Run(context.Background()))
	assert.Empty(t, f.provider.Calls())
	assert.Equal(t, 0, f.history.Len())
}

func TestConsoleEndOfInput(t *testing.T) {
	f := newConsoleFixture(t, "hi", model.TokenMetered)

	require.NoError(t, f.console.Run(context.Background()))
	assert.Len(t, f.provider.Calls(), 1)
}

func TestConsoleScratchpad(t *testing.T) {
	for _, cmd := range []string{CmdScratchpad, CmdMulti} {
		t.Run(cmd, func(t *testing.T) {
			input := cmd + "\nfunc main() {\n}\nEND\nreview this\nEND\n"
			f := newConsoleFixture(t, input, model.TokenMetered)

			require.NoError(t, f.console.Run(context.Background()))
			assert.Contains(t, f.out.String(), "Scratchpad updated!")

			data, err := os.ReadFile(f.template.ScratchpadPath())
			require.NoError(t, err)
			assert.Equal(t, "func main() {\n}", string(data))

			// The scratchpad edit is not a turn; the next line is.
			calls := f.provider.Calls()
			require.Len(t, calls, 1)
			require.Len(t, calls[0].Messages, 2)
			assert.Equal(t, "review this", calls[0].Messages[0].Content)
			assert.Equal(t, "Scratchpad:\nfunc main() {\n}", calls[0].Messages[1].Content)
		})
	}
}

func TestConsoleMissingTemplateSkipsExchange(t *testing.T) {
	f := newConsoleFixture(t, "hi\nEND\n", model.TokenMetered)
	f.console.template = prompt.NewTemplate(filepath.Join(t.TempDir(), "missing.txt"), "")

	require.NoError(t, f.console.Run(context.Background()))
	assert.Contains(t, f.out.String(), "ERROR:")
	assert.Empty(t, f.provider.Calls())
	assert.Equal(t, 0, f.history.Len())
}

func TestConsoleCopyAndReset(t *testing.T) {
	f := newConsoleFixture(t, "COPY\nhi\nCOPY\nRESET\nCOPY\nEND\n", model.TokenMetered)

	require.NoError(t, f.console.Run(context.Background()))

	assert.Equal(t, []string{"Mock response"}, f.copied)
	assert.Equal(t, 0, f.history.Len())
	assert.Equal(t, 2, strings.Count(f.out.String(), "Nothing to copy yet."))
	assert.Contains(t, f.out.String(), "Conversation cleared.")
}

func TestConsoleCopyFailure(t *testing.T) {
	f := newConsoleFixture(t, "hi\nCOPY\nEND\n", model.TokenMetered)
	f.console.copyText = func(string) error { return errors.New("no clipboard utilities available") }

	require.NoError(t, f.console.Run(context.Background()))
	assert.Contains(t, f.out.String(), "no clipboard utilities available")
}

func TestConsoleMessageCountedInfo(t *testing.T) {
	f := newConsoleFixture(t, "hi\nagain\nEND\n", model.MessageCounted)

	require.NoError(t, f.console.Run(context.Background()))

	out := f.out.String()
	assert.NotContains(t, out, "tokens")
	assert.Contains(t, out, "INFO: 2 messages in memory")
	assert.Contains(t, out, "INFO: 4 messages in memory")
}

func TestConsoleHelp(t *testing.T) {
	f := newConsoleFixture(t, "HELP\nEND\n", model.TokenMetered)

	require.NoError(t, f.console.Run(context.Background()))
	for _, cmd := range []string{CmdScratchpad, CmdCopy, CmdReset, CmdEnd} {
		assert.Contains(t, f.out.String(), cmd)
	}
	assert.Empty(t, f.provider.Calls())
}

func TestConsoleEvictsAfterExchange(t *testing.T) {
	f := newConsoleFixture(t, "one\ntwo\nEND\n", model.TokenMetered)
	f.provider.CompleteFunc = func(context.Context, []model.Message, string, float64) (*model.Completion, error) {
		return &model.Completion{Text: "reply", TotalTokens: 8000}, nil
	}

	require.NoError(t, f.console.Run(context.Background()))

	// First exchange cannot evict; second drops "one".
	turns := f.history.Snapshot()
	require.Len(t, turns, 3)
	assert.Equal(t, model.RoleAssistant, turns[0].Role)
	assert.Equal(t, "two", turns[1].Content)
}

func TestConsoleInterruptAtPrompt(t *testing.T) {
	f := newConsoleFixture(t, "", model.TokenMetered)
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	f.console.in = pr

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- f.console.Run(ctx) }()

	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Empty(t, f.provider.Calls())
}

func TestConsoleInterruptDuringExchange(t *testing.T) {
	f := newConsoleFixture(t, "", model.TokenMetered)
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	f.console.in = pr

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dispatchErr error
	f.provider.CompleteFunc = func(ctx context.Context, _ []model.Message, _ string, _ float64) (*model.Completion, error) {
		cancel()
		dispatchErr = ctx.Err()
		return &model.Completion{Text: "finished anyway", TotalTokens: 4}, nil
	}

	go func() { _, _ = io.WriteString(pw, "hi\n") }()

	err := f.console.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The exchange in flight is not cancelled and its reply is kept.
	assert.NoError(t, dispatchErr)
	assert.Contains(t, f.out.String(), "finished anyway")
	assert.Equal(t, 2, f.history.Len())
}
