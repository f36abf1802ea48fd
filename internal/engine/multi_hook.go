package engine

import "context"

// Hooks fans each callback out to every registered hook, in order.
type Hooks []Hook

func (hs Hooks) OnRunStart(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnRunStart(ctx, st)
	}
}
func (hs Hooks) OnTurnStart(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnTurnStart(ctx, st)
	}
}
func (hs Hooks) OnStreamDelta(ctx context.Context, st *State, d string) {
	for _, h := range hs {
		h.OnStreamDelta(ctx, st, d)
	}
}
func (hs Hooks) OnStep(ctx context.Context, st *State, step ExecutionStep) {
	for _, h := range hs {
		h.OnStep(ctx, st, step)
	}
}
func (hs Hooks) OnToolCall(ctx context.Context, st *State, c ToolCall) {
	for _, h := range hs {
		h.OnToolCall(ctx, st, c)
	}
}
func (hs Hooks) OnToolResult(ctx context.Context, st *State, rec ToolExecutionRecord) {
	for _, h := range hs {
		h.OnToolResult(ctx, st, rec)
	}
}
func (hs Hooks) OnDone(ctx context.Context, st *State, res *RunResult) {
	for _, h := range hs {
		h.OnDone(ctx, st, res)
	}
}
