// engine/hooks.go
package engine

import "context"

// Hook observes a run. Implementations must be fast and must not mutate the
// state they are handed.
type Hook interface {
	OnRunStart(ctx context.Context, st *State)
	OnTurnStart(ctx context.Context, st *State)
	OnStreamDelta(ctx context.Context, st *State, delta string)
	OnStep(ctx context.Context, st *State, step ExecutionStep)
	OnToolCall(ctx context.Context, st *State, call ToolCall)
	OnToolResult(ctx context.Context, st *State, rec ToolExecutionRecord)
	OnDone(ctx context.Context, st *State, res *RunResult)
}

// NopHook lets you implement only the hooks you need.
type NopHook struct{}

func (NopHook) OnRunStart(context.Context, *State)                        {}
func (NopHook) OnTurnStart(context.Context, *State)                       {}
func (NopHook) OnStreamDelta(context.Context, *State, string)             {}
func (NopHook) OnStep(context.Context, *State, ExecutionStep)             {}
func (NopHook) OnToolCall(context.Context, *State, ToolCall)              {}
func (NopHook) OnToolResult(context.Context, *State, ToolExecutionRecord) {}
func (NopHook) OnDone(context.Context, *State, *RunResult)                {}
