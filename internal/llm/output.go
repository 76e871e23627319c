package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrInvocationFailed is returned when the CLI could not run or exited non-zero
	ErrInvocationFailed = errors.New("claude invocation failed")

	// ErrOutputParse is returned when stdout does not carry usable structured output
	ErrOutputParse = errors.New("could not parse claude output")

	// ErrTimeout is returned when a call exceeds its timeout
	ErrTimeout = errors.New("claude call timed out")
)

// InvocationError is returned when the CLI exits with a non-zero status
type InvocationError struct {
	ExitCode int
	Stderr   string
}

func (e *InvocationError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("claude command failed with exit code %d", e.ExitCode)
	}
	return fmt.Sprintf("claude command failed with exit code %d: %s", e.ExitCode, stderr)
}

// Is makes every InvocationError match ErrInvocationFailed
func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocationFailed
}

// ExtractStructuredOutput pulls structured_output from the last step record
// of the CLI's verbose JSON output, which is an array of step records.
func ExtractStructuredOutput(stdout []byte) (json.RawMessage, error) {
	if len(strings.TrimSpace(string(stdout))) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrOutputParse)
	}
	if !gjson.ValidBytes(stdout) {
		return nil, fmt.Errorf("%w: output is not valid JSON", ErrOutputParse)
	}

	root := gjson.ParseBytes(stdout)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array of step records", ErrOutputParse)
	}

	steps := root.Array()
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: no step records in output", ErrOutputParse)
	}

	out := steps[len(steps)-1].Get("structured_output")
	if !out.Exists() || out.Type == gjson.Null {
		return nil, fmt.Errorf("%w: last step record has no structured_output", ErrOutputParse)
	}
	return json.RawMessage(out.Raw), nil
}

// ValidateOutput checks output against a JSON schema. An empty schema accepts anything.
func ValidateOutput(schema, output json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(output),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutputParse, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return fmt.Errorf("%w: structured output does not satisfy schema: %s",
		ErrOutputParse, strings.Join(violations, "; "))
}

// InvokeInto runs req and decodes the structured output into out
func InvokeInto[T any](ctx context.Context, inv Invoker, req Request, out *T) error {
	raw, err := inv.Invoke(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputParse, err)
	}
	return nil
}
