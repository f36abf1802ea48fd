package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Executor owns the multi-step streaming loop for one agent configuration.
// It is cheap to construct; build one per run or reuse across runs freely,
// since all mutable state lives in the per-run State.
type Executor struct {
	llm   LLMClient
	tools ToolSet
	cfg   AgentConfig
	hooks Hooks
	opts  ChatOptions
}

// NewExecutor wires an executor from its collaborators. The tool set must be
// built fresh for this executor's runs and not shared.
func NewExecutor(llm LLMClient, tools ToolSet, cfg AgentConfig, hooks Hooks) (*Executor, error) {
	if llm == nil {
		return nil, fmt.Errorf("executor: nil LLM client")
	}
	if tools == nil {
		tools = ToolSet{}
	}
	return &Executor{
		llm:   llm,
		tools: tools,
		cfg:   cfg,
		hooks: hooks,
		opts: ChatOptions{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxTokens,
			Stream:          true,
		},
	}, nil
}

// SetStreaming toggles between the streaming and blocking provider call.
// Streaming is the default; the blocking path exists for providers without a
// usable stream endpoint.
func (e *Executor) SetStreaming(on bool) { e.opts.Stream = on }

// Run executes the loop until the model produces a final turn, the step
// budget is exhausted, the transport fails, or ctx is cancelled. Every
// terminal state returns the full audit trail accumulated so far; the result
// is never silently truncated.
//
// Cancellation is honored at step boundaries only: an in-flight tool
// invocation is allowed to finish, but no further steps are started.
func (e *Executor) Run(ctx context.Context, history []ChatMessage) *RunResult {
	st := e.newState(history)
	res := &RunResult{}
	var text strings.Builder

	e.hooks.OnRunStart(ctx, st)
	defer func() {
		res.FinalText = strings.TrimSpace(text.String())
		res.Usage = st.Totals
		e.hooks.OnDone(ctx, st, res)
	}()

	for {
		select {
		case <-ctx.Done():
			res.Status = StatusCancelled
			return res
		default:
		}

		e.hooks.OnTurnStart(ctx, st)

		resp, err := e.turn(ctx, st)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				res.Status = StatusCancelled
				return res
			}
			res.Status = StatusFailed
			res.Failure = ClassifyTransport(err)
			return res
		}

		st.Totals.Add(resp.Usage)

		// The assistant message goes into the transcript with its tool calls
		// attached; providers need them to reconstruct the wire conversation.
		assistant := resp.Assistant
		assistant.ToolCalls = resp.ToolCalls
		st.Append(assistant)

		if assistant.Content != "" {
			if text.Len() > 0 {
				text.WriteString("\n\n")
			}
			text.WriteString(assistant.Content)
			e.emitStep(ctx, st, res, StepText, assistant.Content)
		}

		// A turn without tool calls is the model's final answer.
		if len(resp.ToolCalls) == 0 {
			res.Status = StatusCompleted
			return res
		}

		// Enforce the step budget: invoke only as many calls as fit. The
		// remainder is dropped, which is exactly what "terminates
		// deterministically regardless of model intent" means.
		calls := resp.ToolCalls
		remaining := e.cfg.StepBudget() - st.ToolCalls
		capped := len(calls) > remaining
		if capped {
			calls = calls[:remaining]
		}

		e.runToolBatch(ctx, st, res, calls)
		st.ToolCalls += len(calls)

		if capped || st.ToolCalls >= e.cfg.StepBudget() {
			res.Status = StatusStepLimit
			return res
		}
	}
}

func (e *Executor) newState(history []ChatMessage) *State {
	st := &State{
		Model:    e.cfg.Model,
		MaxSteps: e.cfg.StepBudget(),
	}
	if e.cfg.SystemPrompt != "" {
		st.Append(ChatMessage{Role: RoleSystem, Content: e.cfg.SystemPrompt})
	}
	for _, msg := range history {
		st.Append(msg)
	}
	return st
}

// turn performs one model invocation, the only point where a run suspends
// awaiting external I/O.
func (e *Executor) turn(ctx context.Context, st *State) (LLMResponse, error) {
	schemas := e.tools.Schemas()
	if !e.opts.Stream {
		return e.llm.Chat(ctx, st.Model, st.Transcript, schemas, e.opts)
	}
	return e.drainStream(ctx, st, schemas)
}

// drainStream consumes the provider's event stream in arrival order,
// reassembling the assistant text and the requested tool calls.
func (e *Executor) drainStream(ctx context.Context, st *State, schemas []ToolSchema) (LLMResponse, error) {
	eventCh, errCh := e.llm.Stream(ctx, st.Model, st.Transcript, schemas, e.opts)

	var buf strings.Builder
	var toolCalls []ToolCall
	var usage Usage

	for eventCh != nil || errCh != nil {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				eventCh = nil
				continue
			}
			switch ev.Type {
			case "text_delta":
				buf.WriteString(ev.Text)
				e.hooks.OnStreamDelta(ctx, st, ev.Text)
			case "tool_call":
				toolCalls = append(toolCalls, ev.ToolCall)
			case "usage":
				usage = ev.Usage
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return LLMResponse{}, err
			}
		}
	}

	return LLMResponse{
		Assistant: ChatMessage{Role: RoleAssistant, Content: buf.String()},
		ToolCalls: toolCalls,
		Usage:     usage,
	}, nil
}

// runToolBatch invokes a batch of tool calls and feeds the results back into
// the transcript. Independent invocations fan out concurrently, but result
// visibility stays in request order: records, steps, and transcript messages
// are appended by request index, never by completion order.
func (e *Executor) runToolBatch(ctx context.Context, st *State, res *RunResult, calls []ToolCall) {
	for _, call := range calls {
		e.hooks.OnToolCall(ctx, st, call)
	}

	outputs := make([]string, len(calls))
	failures := make([]error, len(calls))

	done := make(chan int, len(calls))
	for i, call := range calls {
		go func(i int, c ToolCall) {
			outputs[i], failures[i] = e.invoke(ctx, c)
			done <- i
		}(i, call)
	}
	for range calls {
		<-done
	}

	for i, call := range calls {
		rec := ToolExecutionRecord{
			ToolID: call.Name,
			Input:  call.Args,
			Status: RecordRunning,
		}
		rec.Step = e.emitStep(ctx, st, res, StepToolCall, call)

		content := outputs[i]
		if failures[i] != nil {
			rec.Status = RecordError
			rec.Error = failures[i].Error()
			content = Failure(failures[i])
		} else {
			rec.Status = RecordSuccess
			rec.Output = outputs[i]
		}

		res.Records = append(res.Records, rec)
		e.emitStep(ctx, st, res, StepToolResult, rec)

		// The result becomes the next turn's context. Providers match tool
		// messages to calls by the call id carried in Name.
		callID := call.ID
		if callID == "" {
			callID = call.Name
		}
		st.Append(ChatMessage{Role: RoleTool, Name: callID, Content: content})
		e.hooks.OnToolResult(ctx, st, rec)
	}
}

// invoke resolves and executes a single tool call. Malformed model output
// never crashes the run: every failure mode collapses into an error the
// caller turns into a failure envelope.
func (e *Executor) invoke(ctx context.Context, call ToolCall) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("tool %s panicked: %v", call.Name, r)
		}
	}()

	if call.Error != "" {
		return "", fmt.Errorf("malformed tool call %s: %s", call.Name, call.Error)
	}

	tool, ok := e.tools[call.Name]
	if !ok {
		return "", &UnknownToolError{ToolName: call.Name, Available: e.tools.Names()}
	}

	if err := tool.ValidateArgs(call.Args); err != nil {
		return "", err
	}

	return tool.Fn(ctx, call.Args)
}

// emitStep appends one step to the append-only audit trail and returns its
// index.
func (e *Executor) emitStep(ctx context.Context, st *State, res *RunResult, kind StepKind, payload any) int {
	step := ExecutionStep{Index: st.nextStep(), Kind: kind, Payload: payload}
	res.Steps = append(res.Steps, step)
	e.hooks.OnStep(ctx, st, step)
	return step.Index
}
