package engine

import "context"

// Event is one item of the typed event stream a run emits: text deltas, tool
// call boundaries, step boundaries, and the terminal result.
type Event struct {
	Kind string // "run_start", "turn_start", "delta", "step", "tool_start", "tool_done", "done"
	Data any
}

// EventHook bridges a run to a consumer channel. Sends block, so the consumer
// must drain the channel for the duration of the run.
type EventHook struct{ Ch chan<- Event }

func (h EventHook) OnRunStart(_ context.Context, st *State) {
	h.Ch <- Event{Kind: "run_start", Data: st.Model}
}
func (h EventHook) OnTurnStart(_ context.Context, st *State) {
	h.Ch <- Event{Kind: "turn_start", Data: st.ToolCalls}
}
func (h EventHook) OnStreamDelta(_ context.Context, _ *State, d string) {
	h.Ch <- Event{Kind: "delta", Data: d}
}
func (h EventHook) OnStep(_ context.Context, _ *State, step ExecutionStep) {
	h.Ch <- Event{Kind: "step", Data: step}
}
func (h EventHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.Ch <- Event{Kind: "tool_start", Data: c.Name}
}
func (h EventHook) OnToolResult(_ context.Context, _ *State, rec ToolExecutionRecord) {
	h.Ch <- Event{Kind: "tool_done", Data: rec}
}
func (h EventHook) OnDone(_ context.Context, _ *State, res *RunResult) {
	h.Ch <- Event{Kind: "done", Data: res.Status}
}
