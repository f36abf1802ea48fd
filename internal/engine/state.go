package engine

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusStepLimit RunStatus = "step_limit_reached"
	StatusFailed    RunStatus = "failed"
	StatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is a terminal state.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusStepLimit, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// StepKind classifies one entry of a run's audit trail.
type StepKind string

const (
	StepText       StepKind = "text"
	StepToolCall   StepKind = "tool_call"
	StepToolResult StepKind = "tool_result"
)

// ExecutionStep is one entry of the ordered, append-only audit trail. Indexes
// are strictly increasing by 1 starting at 1; steps are never mutated after
// emission.
type ExecutionStep struct {
	Index   int      `json:"index"`
	Kind    StepKind `json:"kind"`
	Payload any      `json:"payload"`
}

// RecordStatus tracks the lifecycle of one tool invocation.
type RecordStatus string

const (
	RecordRunning RecordStatus = "running"
	RecordSuccess RecordStatus = "success"
	RecordError   RecordStatus = "error"
)

// ToolExecutionRecord is the audit record of one tool invocation. Status
// transitions running to success or running to error exactly once and the
// record is never reopened.
type ToolExecutionRecord struct {
	Step   int            `json:"step"` // index of the tool_call step
	ToolID string         `json:"tool_id"`
	Input  map[string]any `json:"input"`
	Output string         `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
	Status RecordStatus   `json:"status"`
}

// RunResult is everything a run produced, returned for every terminal state
// so a human can audit exactly what was attempted, even on failure.
type RunResult struct {
	Status    RunStatus
	FinalText string
	Steps     []ExecutionStep
	Records   []ToolExecutionRecord
	Usage     Usage
	// Failure carries the classified transport error for StatusFailed.
	Failure *TransportError
}

// State is the mutable per-run execution state. One State belongs to exactly
// one run; nothing is shared between concurrent runs.
type State struct {
	Transcript []ChatMessage // conversation visible to the model
	Model      string
	MaxSteps   int

	ToolCalls int // tool invocations so far, bounded by MaxSteps
	stepIndex int // last emitted ExecutionStep index
	Totals    Usage
}

// Append adds a message to the transcript.
func (s *State) Append(msg ChatMessage) { s.Transcript = append(s.Transcript, msg) }

// nextStep returns the next strictly increasing step index.
func (s *State) nextStep() int {
	s.stepIndex++
	return s.stepIndex
}
