// Package ui implements the interactive console: a blocking read-eval-print
// loop over stdin that feeds user turns through the exchange engine and
// prints the replies.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"chatbot/exchange"
	"chatbot/memory"
	"chatbot/model"
	"chatbot/prompt"
)

// Commands recognized at the prompt. Anything else is sent to the model.
const (
	CmdEnd        = "END"
	CmdScratchpad = "SCRATCHPAD"
	CmdMulti      = "M"
	CmdCopy       = "COPY"
	CmdReset      = "RESET"
	CmdHelp       = "HELP"
)

// Exchanger runs one exchange. *exchange.Controller satisfies it.
type Exchanger interface {
	Exchange(ctx context.Context, history []model.Message, system model.Message, modelName string, temperature float64) exchange.Result
}

// Settings are the console's view of the session configuration.
type Settings struct {
	Model          string
	Temperature    float64
	Profile        model.Profile
	WrapWidth      int
	RenderMarkdown bool
}

// Console is the chat loop. It owns the conversation history.
type Console struct {
	in        io.Reader
	out       io.Writer
	settings  Settings
	exchanger Exchanger
	history   *memory.History
	template  *prompt.Template
	logger    *zap.Logger

	copyText      func(string) error
	terminalWidth func() int

	lines   chan string
	scanErr error

	lastReply string
}

// NewConsole creates a console reading commands from in and writing replies
// to out.
func NewConsole(in io.Reader, out io.Writer, settings Settings, exchanger Exchanger, history *memory.History, template *prompt.Template, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:            in,
		out:           out,
		settings:      settings,
		exchanger:     exchanger,
		history:       history,
		template:      template,
		logger:        logger,
		copyText:      clipboard.WriteAll,
		terminalWidth: TerminalWidth,
	}
}

// Run prints the banner and processes input until END, end of input or
// cancellation of ctx. Cancellation is only observed at the prompt; an
// exchange in flight always runs to completion.
func (c *Console) Run(ctx context.Context) error {
	c.printBanner()

	done := make(chan struct{})
	defer close(done)
	c.startReader(done)

	for {
		fmt.Fprintf(c.out, "\n\n%s\n", UserStyle.Render(c.settings.Model+": [NORMAL] USER:"))

		text, err := c.readLine(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(text) {
		case "":
			// empty submission, probably on accident
			continue
		case CmdEnd:
			fmt.Fprintln(c.out, DimStyle.Render("Goodbye."))
			return nil
		case CmdScratchpad, CmdMulti:
			if err := c.editScratchpad(ctx); err != nil {
				return err
			}
			continue
		case CmdCopy:
			c.copyLastReply()
			continue
		case CmdReset:
			c.history.Reset()
			c.lastReply = ""
			fmt.Fprintln(c.out, DimStyle.Render("Conversation cleared."))
			continue
		case CmdHelp:
			c.printHelp()
			continue
		}

		c.converse(ctx, text)
	}
}

// startReader scans input lines on a separate goroutine so a blocked read
// does not hold up cancellation.
func (c *Console) startReader(done <-chan struct{}) {
	scanner := bufio.NewScanner(c.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	c.lines = make(chan string)
	go func() {
		defer close(c.lines)
		for scanner.Scan() {
			select {
			case c.lines <- scanner.Text():
			case <-done:
				return
			}
		}
		c.scanErr = scanner.Err()
	}()
}

// readLine returns the next input line, io.EOF at end of input, or the ctx
// error once ctx is cancelled.
func (c *Console) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			if c.scanErr != nil {
				return "", c.scanErr
			}
			return "", io.EOF
		}
		return line, nil
	}
}

// converse runs one exchange for text and records it in the history.
//
// The system turn is rendered before the user turn is stored, so a broken
// template leaves the history unchanged.
func (c *Console) converse(ctx context.Context, text string) {
	system, err := c.template.SystemMessage()
	if err != nil {
		c.logger.Error("cannot build system message", zap.Error(err))
		fmt.Fprintf(c.out, "%s %v\n", ErrorStyle.Render("ERROR:"), err)
		return
	}

	c.history.AppendUser(text)

	result := c.exchanger.Exchange(context.WithoutCancel(ctx), c.history.Snapshot(), system, c.settings.Model, c.settings.Temperature)

	if c.history.ApplyBudget(result.Usage) {
		c.logger.Debug("evicted oldest turn",
			zap.Float64("usage", result.Usage),
			zap.Int("turns", c.history.Len()))
	}
	c.history.AppendAssistant(result.Text)
	c.lastReply = result.Text

	c.printResponse(result)
}

func (c *Console) editScratchpad(ctx context.Context) error {
	fmt.Fprintf(c.out, "\n%s\n%s\n", DimStyle.Render("Type END to save and exit."), MultiStyle.Render("[MULTI] USER:"))

	var lines []string
	for {
		line, err := c.readLine(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if line == CmdEnd {
			break
		}
		lines = append(lines, line)
	}

	if err := c.template.SaveScratchpad(strings.Join(lines, "\n")); err != nil {
		c.logger.Error("cannot save scratchpad", zap.Error(err))
		fmt.Fprintf(c.out, "%s %v\n", ErrorStyle.Render("ERROR:"), err)
		return nil
	}

	fmt.Fprintf(c.out, "\n%s\n", TitleStyle.Render("#####      Scratchpad updated!"))
	return nil
}

func (c *Console) copyLastReply() {
	if c.lastReply == "" {
		fmt.Fprintln(c.out, DimStyle.Render("Nothing to copy yet."))
		return
	}
	if err := c.copyText(c.lastReply); err != nil {
		c.logger.Warn("clipboard unavailable", zap.Error(err))
		fmt.Fprintf(c.out, "%s %v\n", ErrorStyle.Render("ERROR:"), err)
		return
	}
	fmt.Fprintln(c.out, DimStyle.Render("Last reply copied to clipboard."))
}

func (c *Console) printBanner() {
	fmt.Fprintf(c.out, "\n%s\n", TitleStyle.Render("****** IMPORTANT ******"))
	fmt.Fprintf(c.out, "Model: %s  Temperature: %v\n", c.settings.Model, c.settings.Temperature)
	fmt.Fprintln(c.out, "Type 'SCRATCHPAD' to enter multi-line input mode to update the scratchpad.")
	fmt.Fprintln(c.out, "Type 'END' to save and exit. Type 'HELP' for all commands.")
}

func (c *Console) printHelp() {
	fmt.Fprintf(c.out, "\n%s\n", TitleStyle.Render("Commands"))
	fmt.Fprintln(c.out, FormatCommands(
		CmdScratchpad+", "+CmdMulti, "Multi-line input that replaces the scratchpad (finish with END)",
		CmdCopy, "Copy the last reply to the clipboard",
		CmdReset, "Forget the conversation so far",
		CmdHelp, "Show this help",
		CmdEnd, "Exit",
	))
}

func (c *Console) printResponse(result exchange.Result) {
	width := EffectiveWidth(c.settings.WrapWidth, c.terminalWidth())

	var body string
	if c.settings.RenderMarkdown {
		body = RenderMarkdown(result.Text, width)
	} else {
		body = WrapResponse(result.Text, width)
	}

	fmt.Fprintf(c.out, "\n\n%s\n\n%s\n", AssistantStyle.Render("CHATBOT response:"), body)

	var info string
	if c.settings.Profile.TokenUsage {
		info = fmt.Sprintf("INFO: %s: %d tokens, %.2f seconds", c.settings.Model, result.TotalTokens, result.Duration.Seconds())
	} else {
		info = fmt.Sprintf("INFO: %s: %.2f seconds", c.settings.Model, result.Duration.Seconds())
	}
	fmt.Fprintf(c.out, "\n%s\n", DimStyle.Render(info))

	if c.settings.Profile.Eviction == model.EvictByMessageCount {
		fmt.Fprintln(c.out, DimStyle.Render(fmt.Sprintf("INFO: %d messages in memory", c.history.Len())))
	}
}
