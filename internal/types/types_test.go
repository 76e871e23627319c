package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReportValidate(t *testing.T) {
	twoPhases := []Phase{
		{Description: "Add tests", Status: StatusCompleted},
		{Description: "Fix bug", Status: StatusPending},
	}

	tests := []struct {
		name    string
		report  StatusReport
		wantErr bool
		errMsg  string
	}{
		{
			name:   "next phase in range",
			report: StatusReport{Phases: twoPhases, NextPhaseIndex: 1},
		},
		{
			name:   "all complete sentinel",
			report: StatusReport{Phases: twoPhases, NextPhaseIndex: NoNextPhase},
		},
		{
			name:   "empty plan with sentinel",
			report: StatusReport{NextPhaseIndex: NoNextPhase},
		},
		{
			name:    "index equal to length",
			report:  StatusReport{Phases: twoPhases, NextPhaseIndex: 2},
			wantErr: true,
			errMsg:  "nextPhaseIndex",
		},
		{
			name:    "index below sentinel",
			report:  StatusReport{Phases: twoPhases, NextPhaseIndex: -2},
			wantErr: true,
			errMsg:  "index is out of range",
		},
		{
			name:    "empty plan with index zero",
			report:  StatusReport{NextPhaseIndex: 0},
			wantErr: true,
			errMsg:  "nextPhaseIndex",
		},
		{
			name: "unknown status",
			report: StatusReport{
				Phases:         []Phase{{Description: "Ship", Status: PhaseStatus("done")}},
				NextPhaseIndex: 0,
			},
			wantErr: true,
			errMsg:  "phases[0].status",
		},
		{
			name: "blank description",
			report: StatusReport{
				Phases:         []Phase{{Description: "  ", Status: StatusPending}},
				NextPhaseIndex: 0,
			},
			wantErr: true,
			errMsg:  "phases[0].description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			var verrs *ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestStatusReportNext(t *testing.T) {
	report := &StatusReport{
		Phases: []Phase{
			{Description: "Add tests", Status: StatusCompleted},
			{Description: "Fix bug", Status: StatusPending},
			{Description: "Docs", Status: StatusInProgress},
		},
		NextPhaseIndex: 1,
	}

	next := report.Next()
	require.NotNil(t, next)
	assert.Equal(t, "Fix bug", next.Description)
	assert.False(t, report.IsComplete())
	assert.Equal(t, 2, report.Remaining())

	report.NextPhaseIndex = NoNextPhase
	assert.Nil(t, report.Next())
	assert.True(t, report.IsComplete())

	report.NextPhaseIndex = 7
	assert.Nil(t, report.Next())
}

func TestPhaseStatusIsValid(t *testing.T) {
	for _, s := range AllPhaseStatuses() {
		assert.True(t, s.IsValid(), "status %q", s)
	}
	assert.False(t, PhaseStatus("complete").IsValid())
	assert.False(t, PhaseStatus("").IsValid())
}

func TestScrollDirection(t *testing.T) {
	tests := []struct {
		dir   ScrollDirection
		valid bool
		jump  bool
	}{
		{ScrollUp, true, false},
		{ScrollDown, true, false},
		{ScrollTop, true, true},
		{ScrollBottom, true, true},
		{ScrollDirection("left"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.dir.IsValid())
			assert.Equal(t, tt.jump, tt.dir.IsJump())
		})
	}
}

func TestParsedInputPrompt(t *testing.T) {
	var parsed ParsedInput
	require.NoError(t, json.Unmarshal([]byte(`{"sessionPrompt": null, "commands": [{"type":"scroll","args":{"direction":"bottom"}}]}`), &parsed))

	assert.False(t, parsed.HasPrompt())
	assert.Equal(t, "", parsed.Prompt())

	want := []Command{{Type: CommandScroll, Args: map[string]any{"direction": "bottom"}}}
	if diff := cmp.Diff(want, parsed.Commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}

	prompt := "  Write a blog post  "
	parsed.SessionPrompt = &prompt
	assert.True(t, parsed.HasPrompt())
	assert.Equal(t, "Write a blog post", parsed.Prompt())

	blank := "   "
	parsed.SessionPrompt = &blank
	assert.False(t, parsed.HasPrompt())
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := &ValidationErrors{}
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("nextPhaseIndex", "-1 or an index in [0, 2)", 5, "index is out of range for the reported phases")
	assert.Equal(t,
		"nextPhaseIndex: index is out of range for the reported phases (expected -1 or an index in [0, 2), got 5)",
		errs.Error())

	errs.Add("phases[0].status", "one of: pending, in_progress, completed", "done", "invalid value")
	msg := errs.Error()
	assert.True(t, strings.HasPrefix(msg, "2 invalid fields: "))
	assert.Contains(t, msg, "phases[0].status: invalid value")
	assert.Equal(t, []string{"nextPhaseIndex", "phases[0].status"}, errs.Fields())
	assert.ErrorIs(t, errs, ErrInvalidReport)
}

func TestFormatActual(t *testing.T) {
	tests := []struct {
		actual any
		want   string
	}{
		{nil, "null"},
		{"x", `"x"`},
		{"", `""`},
		{42, "42"},
		{-2, "-2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatActual(tt.actual))
	}
}
