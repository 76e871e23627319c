package voice

import (
	"context"
	"errors"
	"time"

	"github.com/daydemir/phaser/internal/display"
	"github.com/daydemir/phaser/internal/llm"
	"github.com/daydemir/phaser/internal/prompts"
	"github.com/daydemir/phaser/internal/types"
)

// DefaultParseTimeout bounds a single parse call
const DefaultParseTimeout = 30 * time.Second

// Parser turns a chunk of transcribed speech into a session prompt and commands
type Parser struct {
	invoker llm.Invoker
	history *History
	timeout time.Duration
	display *display.Display

	// WorkDir is searched for .phaser/prompts overrides
	WorkDir string
}

// NewParser creates a parser that records every message in history
func NewParser(invoker llm.Invoker, history *History, timeout time.Duration, d *display.Display) *Parser {
	if timeout <= 0 {
		timeout = DefaultParseTimeout
	}
	return &Parser{
		invoker: invoker,
		history: history,
		timeout: timeout,
		display: d,
	}
}

// Parse adds text to the history and asks the assistant to interpret it,
// with the earlier messages as context. Any failure is logged and yields nil.
func (p *Parser) Parse(ctx context.Context, text string) *types.ParsedInput {
	p.history.Add(text)

	instruction, err := prompts.Render(p.WorkDir, prompts.Voice, prompts.VoiceData{
		Context: p.history.Context(),
		Latest:  text,
	})
	if err != nil {
		p.display.Error("Error building parse prompt: " + err.Error())
		return nil
	}

	var parsed types.ParsedInput
	err = llm.InvokeInto(ctx, p.invoker, llm.Request{
		Label:       "parse",
		Instruction: instruction,
		Schema:      types.ParsedInputSchema(),
		Timeout:     p.timeout,
	}, &parsed)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrTimeout):
			p.display.Warning("Claude CLI call timed out")
		case errors.Is(err, llm.ErrInvocationFailed):
			p.display.Warning("Claude CLI error: " + err.Error())
		case errors.Is(err, llm.ErrOutputParse):
			p.display.Warning("Failed to parse Claude output: " + err.Error())
		default:
			p.display.Warning("Error parsing with Claude: " + err.Error())
		}
		return nil
	}
	return &parsed
}
