// Package executor drives a planning document to completion one phase at a
// time, re-querying the assistant for phase status after every phase.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daydemir/phaser/internal/display"
	"github.com/daydemir/phaser/internal/llm"
	"github.com/daydemir/phaser/internal/prompts"
	"github.com/daydemir/phaser/internal/types"
	"github.com/daydemir/phaser/internal/utils"
	"github.com/google/uuid"
)

// ErrPhaseReportedFailure is returned when the assistant answers success:false
var ErrPhaseReportedFailure = errors.New("phase reported failure")

// Config holds executor configuration
type Config struct {
	MaxRuntime time.Duration
	Throttle   time.Duration
	ShowTimer  bool

	// WorkDir is searched for .phaser/prompts overrides
	WorkDir string
}

// DefaultConfig returns default executor configuration
func DefaultConfig() *Config {
	return &Config{
		MaxRuntime: 90 * time.Minute,
		Throttle:   2 * time.Second,
		ShowTimer:  true,
	}
}

// Outcome is how a run ended
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeDone
	OutcomeAlreadyComplete
	OutcomeTimeLimit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeAlreadyComplete:
		return "already complete"
	case OutcomeTimeLimit:
		return "time limit"
	default:
		return "failed"
	}
}

// Complete reports whether every phase ended up completed
func (o Outcome) Complete() bool {
	return o == OutcomeDone || o == OutcomeAlreadyComplete
}

// RunSummary holds the result of a run
type RunSummary struct {
	ID      string
	Outcome Outcome
	Steps   int
	Elapsed time.Duration
	Report  *types.StatusReport
}

// Runner executes phases using Claude Code
type Runner struct {
	config  *Config
	invoker llm.Invoker
	display *display.Display

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New creates a new runner
func New(config *Config, invoker llm.Invoker, d *display.Display) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Runner{
		config:  config,
		invoker: invoker,
		display: d,
		now:     time.Now,
		sleep:   utils.Sleep,
	}
}

// FetchStatus asks the assistant for the current phase list and validates it
func (r *Runner) FetchStatus(ctx context.Context, planningDoc string) (*types.StatusReport, error) {
	instruction, err := prompts.Render(r.config.WorkDir, prompts.Status, prompts.StatusData{PlanningDoc: planningDoc})
	if err != nil {
		return nil, err
	}

	var report types.StatusReport
	err = llm.InvokeInto(ctx, r.invoker, llm.Request{
		Label:       "status",
		Instruction: instruction,
		Schema:      types.StatusReportSchema(),
	}, &report)
	if err != nil {
		return nil, fmt.Errorf("error fetching phase status: %w", err)
	}

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("invalid phase status: %w", err)
	}
	return &report, nil
}

// ExecutePhase asks the assistant to implement exactly one phase
func (r *Runner) ExecutePhase(ctx context.Context, planningDoc string, index int, phase types.Phase, progress llm.Indicator) (*types.ExecutionResult, error) {
	instruction, err := prompts.Render(r.config.WorkDir, prompts.Execute, prompts.ExecuteData{
		PlanningDoc: planningDoc,
		Number:      index + 1,
		Description: phase.Description,
	})
	if err != nil {
		return nil, err
	}

	var result types.ExecutionResult
	err = llm.InvokeInto(ctx, r.invoker, llm.Request{
		Label:       "execute",
		Instruction: instruction,
		Schema:      types.ExecutionResultSchema(),
		Progress:    progress,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Run loops status -> execute -> status until every phase is completed,
// a phase fails, or the time budget is spent.
func (r *Runner) Run(ctx context.Context, planningDoc string) (*RunSummary, error) {
	summary := &RunSummary{ID: uuid.NewString(), Outcome: OutcomeFailed}
	r.display.Debug("run " + summary.ID)

	r.display.Progress("Fetching phase information...")
	report, err := r.FetchStatus(ctx, planningDoc)
	if err != nil {
		r.display.Error(err.Error())
		return summary, err
	}
	summary.Report = report

	r.display.PhaseOverview(report)

	if report.IsComplete() {
		r.display.Success("All steps already complete!")
		summary.Outcome = OutcomeAlreadyComplete
		return summary, nil
	}

	r.display.Progress(fmt.Sprintf("Starting from Step %d: %s", report.NextPhaseIndex+1, report.Next().Description))
	r.display.Blank()

	start := r.now()

	var progress llm.Indicator
	if r.config.ShowTimer {
		progress = r.display.NewTimer(start, r.config.MaxRuntime)
	}

	for !report.IsComplete() {
		if r.now().Sub(start) >= r.config.MaxRuntime {
			r.display.Warning(fmt.Sprintf("Time limit reached (%s)", display.FormatClock(r.config.MaxRuntime)))
			summary.Outcome = OutcomeTimeLimit
			break
		}

		index := report.NextPhaseIndex
		phase := *report.Next()
		r.display.StepHeader(index, len(report.Phases), phase.Description)

		phaseStart := r.now()
		result, err := r.ExecutePhase(ctx, planningDoc, index, phase, progress)
		stepTime, total := r.now().Sub(phaseStart), r.now().Sub(start)
		summary.Elapsed = total

		if err != nil {
			r.display.StepFailed(fmt.Sprintf("Phase %d failed: %v", index+1, err), stepTime, total)
			return summary, fmt.Errorf("phase %d failed: %w", index+1, err)
		}
		if !result.Success {
			r.display.StepFailed(fmt.Sprintf("Step %d reported failure", index+1), stepTime, total)
			return summary, fmt.Errorf("step %d: %w", index+1, ErrPhaseReportedFailure)
		}

		summary.Steps++
		r.display.StepDone(index, stepTime, total)

		// Never trust the old report after an execution
		r.display.Progress("Fetching updated phase status...")
		report, err = r.FetchStatus(ctx, planningDoc)
		if err != nil {
			r.display.Error(err.Error())
			return summary, err
		}
		summary.Report = report

		if !report.IsComplete() {
			if err := r.sleep(ctx, r.config.Throttle); err != nil {
				return summary, err
			}
		}
	}

	if report.IsComplete() {
		summary.Outcome = OutcomeDone
	}
	summary.Elapsed = r.now().Sub(start)

	r.display.Summary(summary.Outcome == OutcomeDone, report.Remaining(), summary.Steps, summary.Elapsed, planningDoc)
	return summary, nil
}
