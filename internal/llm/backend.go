package llm

import (
	"context"
	"encoding/json"
	"time"
)

// Invoker runs the assistant CLI with an instruction and returns the
// structured output it produced, already checked against the request schema.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (json.RawMessage, error)
}

// Indicator is a progress display kept running for the length of a call
type Indicator interface {
	Start()
	Stop()
}

// Request describes a single structured-output call
type Request struct {
	// Label names the call in debug output ("status", "execute", "parse")
	Label string

	Instruction string
	Schema      json.RawMessage

	// Timeout bounds the call; zero means no bound
	Timeout time.Duration

	// Progress, when set, is started before the call and stopped after it
	Progress Indicator
}
