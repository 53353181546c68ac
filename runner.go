package switchyard

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// Runner handles an interactive conversation loop against an Engine using
// provided IO. This keeps terminal concerns out of the core and allows easy
// testing and integration with different frontends (plain CLI, TUI, pipes).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// SessionID resumes an existing conversation; empty starts a new one.
	// Updated after the first turn so follow-ups stay on the same session.
	SessionID string

	// Context seeds known facts into the first turn only.
	Context map[string]string
}

// ContentRenderer transforms a reply before it is written, e.g. markdown to
// ANSI for a TTY. A render error falls back to the raw text.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Callers must set Input and Output (typically
// os.Stdin and os.Stdout) before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run reads messages line by line and executes one engine turn per line,
// until EOF or an exit command. Reasoner outages are printed and the loop
// continues, so a transient failure never kills the conversation.
func (r *Runner) Run(ctx context.Context, engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)
	writer := r.Output

	if !r.Headless {
		fmt.Fprintln(writer, "Type a message, or \"exit\" to leave.")
	}

	seedContext := r.Context
	for {
		if !r.Headless {
			fmt.Fprint(writer, "> ")
		}

		text, err := lineReader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(text)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			if !r.Headless {
				fmt.Fprintln(writer, "Bye!")
			}
			return nil
		}

		res, err := engine.Turn(ctx, TurnRequest{
			SessionID: r.SessionID,
			Message:   input,
			Context:   seedContext,
		})
		if err != nil {
			if domain.IsExternal(err) {
				fmt.Fprintln(writer, "The assistant is unreachable right now. Try again in a moment.")
				continue
			}
			return err
		}
		r.SessionID = res.SessionID
		seedContext = nil

		output := res.Reply
		if r.Renderer != nil {
			if rendered, err := r.Renderer(output); err == nil {
				output = rendered
			}
		}
		fmt.Fprintln(writer, strings.TrimSpace(output))
	}
}
