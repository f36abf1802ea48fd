// engine/hook_logger.go
package engine

import (
	"context"
	"log"
)

// LoggerHook writes run progress to a standard logger.
type LoggerHook struct{ L *log.Logger }

func (h LoggerHook) OnRunStart(_ context.Context, st *State) {
	h.L.Printf("run start: model=%s max_steps=%d tools in transcript=%d", st.Model, st.MaxSteps, len(st.Transcript))
}
func (h LoggerHook) OnTurnStart(_ context.Context, st *State) {
	h.L.Printf("turn: steps=%d msgs=%d tokens=%d", st.ToolCalls, len(st.Transcript), st.Totals.Total)
}
func (h LoggerHook) OnStreamDelta(_ context.Context, _ *State, _ string) {}
func (h LoggerHook) OnStep(_ context.Context, _ *State, step ExecutionStep) {
	h.L.Printf("step %d: %s", step.Index, step.Kind)
}
func (h LoggerHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.L.Printf("tool → %s args=%v", c.Name, c.Args)
}
func (h LoggerHook) OnToolResult(_ context.Context, _ *State, rec ToolExecutionRecord) {
	if rec.Status == RecordError {
		h.L.Printf("tool %s error: %s", rec.ToolID, rec.Error)
		return
	}
	preview := rec.Output
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	h.L.Printf("tool %s result: %s", rec.ToolID, preview)
}
func (h LoggerHook) OnDone(_ context.Context, st *State, res *RunResult) {
	h.L.Printf("done: status=%s steps=%d records=%d tokens=%d",
		res.Status, st.ToolCalls, len(res.Records), st.Totals.Total)
}
