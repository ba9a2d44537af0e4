package runloop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agencyboard/agentrun/modelio"
	"github.com/agencyboard/agentrun/pricing"
)

// Runner drives multi-turn agent runs: it calls the model, executes tool
// calls through the dispatcher, enforces budgets, and terminates each run
// as completed, paused for confirmation, or failed.
//
// A Runner is safe for concurrent use; each run owns its own state and the
// only shared collaborators are the injected interfaces.
type Runner struct {
	client     modelio.Client
	dispatcher Dispatcher
	policy     ConfirmationPolicy
	rates      *pricing.Table
	sink       ProgressSink
}

// NewRunner creates a Runner. A nil sink disables progress reporting.
func NewRunner(client modelio.Client, dispatcher Dispatcher, policy ConfirmationPolicy, rates *pricing.Table, sink ProgressSink) (*Runner, error) {
	if client == nil {
		return nil, errors.New("model client is required")
	}
	if dispatcher == nil {
		return nil, errors.New("tool dispatcher is required")
	}
	if policy == nil {
		return nil, errors.New("confirmation policy is required")
	}
	if rates == nil {
		return nil, errors.New("pricing table is required")
	}
	if sink == nil {
		sink = noopSink{}
	}
	return &Runner{
		client:     client,
		dispatcher: dispatcher,
		policy:     policy,
		rates:      rates,
		sink:       sink,
	}, nil
}

// RunRequest starts a fresh run from a single user message.
type RunRequest struct {
	RunID        string // generated when empty
	Model        string
	SystemPrompt string
	UserMessage  string
	Tools        []modelio.ToolDefinition
	Budget       Budget
	Exec         ExecContext
}

// ResumeRequest re-enters a paused run with a human decision. Messages and
// Pending come from the paused snapshot; Usage and Iterations restore the
// accumulated totals so budgets and billing stay correct across the pause.
//
// The engine trusts the supplied pending call and uses its id to build the
// tool result without re-verifying it against stored state; matching the
// decision to the right pending call is the caller's responsibility.
type ResumeRequest struct {
	RunID        string
	Model        string
	SystemPrompt string
	Messages     Conversation
	Pending      *PendingToolCall
	Decision     Decision
	Tools        []modelio.ToolDefinition
	Budget       Budget
	Exec         ExecContext
	Usage        modelio.Usage
	Iterations   int
	Output       string // text accumulated before the pause
}

// runState is the per-run mutable state threaded through one loop instance.
// Token totals live here, never in package globals, so concurrent runs stay
// isolated.
type runState struct {
	runID     string
	model     string
	system    string
	tools     []modelio.ToolDefinition
	budget    Budget
	exec      ExecContext
	msgs      Conversation
	iteration int
	usage     modelio.Usage
	output    strings.Builder
	log       []ToolCallLogEntry
	started   time.Time
}

// Run executes a fresh run to a terminal outcome.
func (r *Runner) Run(ctx context.Context, req RunRequest) (Outcome, error) {
	if req.Model == "" {
		return Outcome{}, errors.New("run: model is required")
	}
	if req.UserMessage == "" {
		return Outcome{}, errors.New("run: user message is required")
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	st := &runState{
		runID:   runID,
		model:   req.Model,
		system:  req.SystemPrompt,
		tools:   req.Tools,
		budget:  req.Budget.normalized(),
		exec:    req.Exec,
		msgs:    Conversation{modelio.UserMessage(req.UserMessage)},
		started: time.Now(),
	}
	st.exec.RunID = runID
	return r.run(ctx, st)
}

// Resume re-enters a paused run. It synthesizes exactly one tool result for
// the pending call — executing it on approve, or substituting the fixed
// rejection text on reject — answers any other calls from the paused
// assistant turn, and then continues the iteration loop. The model must see
// a result for every tool call it issued; an unanswered id is undefined
// behavior at the provider.
func (r *Runner) Resume(ctx context.Context, req ResumeRequest) (Outcome, error) {
	if req.Model == "" {
		return Outcome{}, errors.New("resume: model is required")
	}
	if req.Pending == nil {
		return Outcome{}, errors.New("resume: no pending tool call")
	}
	if req.Decision != DecisionApprove && req.Decision != DecisionReject {
		return Outcome{}, fmt.Errorf("resume: invalid decision %q", req.Decision)
	}
	if len(req.Messages) == 0 {
		return Outcome{}, errors.New("resume: empty message history")
	}

	st := &runState{
		runID:     req.RunID,
		model:     req.Model,
		system:    req.SystemPrompt,
		tools:     req.Tools,
		budget:    req.Budget.normalized(),
		exec:      req.Exec,
		msgs:      req.Messages.Clone(),
		iteration: req.Iterations,
		usage:     req.Usage,
		started:   time.Now(),
	}
	st.output.WriteString(req.Output)
	st.exec.RunID = req.RunID

	pending := req.Pending
	var decisionText string
	var decisionErr bool
	if req.Decision == DecisionApprove {
		res, err := r.dispatcher.Execute(ctx, modelio.ToolCall{ID: pending.ID, Name: pending.Name, Input: pending.Input}, st.exec)
		if err != nil {
			return r.fail(ctx, st, fmt.Errorf("tool %s: %w", pending.Name, err))
		}
		decisionText = truncateResult(formatResult(res))
		decisionErr = !res.OK
		st.log = append(st.log, ToolCallLogEntry{Name: pending.Name, Input: pending.Input, Result: decisionText, OK: res.OK})
	} else {
		decisionText = RejectedToolResult
	}

	st.msgs = st.msgs.Append(resumeResultsMessage(st.msgs, pending, decisionText, decisionErr))
	return r.run(ctx, st)
}

// resumeResultsMessage builds the single user message that answers the
// paused assistant turn: the decision result for the pending call, the
// results already carried on the pending record for calls that ran before
// the gate, and a synthesized not-executed result for any call the pause
// cut off. Every tool call id from that turn ends up answered exactly once.
func resumeResultsMessage(msgs Conversation, pending *PendingToolCall, decisionText string, decisionErr bool) modelio.Message {
	prior := make(map[string]modelio.ToolResultData, len(pending.PriorResults))
	for _, res := range pending.PriorResults {
		prior[res.ToolCallID] = res
	}

	var calls []modelio.ToolCall
	if last := msgs[len(msgs)-1]; last.Role == modelio.RoleAssistant {
		calls = last.ToolCalls()
	}

	var blocks []modelio.ContentBlock
	answeredPending := false
	for _, call := range calls {
		switch {
		case call.ID == pending.ID:
			blocks = append(blocks, modelio.ToolResultBlock(call.ID, decisionText, decisionErr))
			answeredPending = true
		case prior[call.ID].ToolCallID != "":
			res := prior[call.ID]
			blocks = append(blocks, modelio.ToolResultBlock(res.ToolCallID, res.Text, res.IsError))
		default:
			blocks = append(blocks, modelio.ToolResultBlock(call.ID,
				"ERROR: not executed; the run paused for user confirmation of an earlier tool call.", true))
		}
	}
	if !answeredPending {
		// Trust boundary: the caller supplied a pending call the stored
		// history does not show. Answer it anyway so the decision is not
		// silently dropped.
		blocks = append(blocks, modelio.ToolResultBlock(pending.ID, decisionText, decisionErr))
	}
	return modelio.ToolResultsMessage(blocks...)
}

// run is the iteration loop (one pass = one model call plus one batch of
// tool executions). Each pass appends exactly one assistant message and,
// unless the run pauses or completes, exactly one user message of tool
// results, so the conversation alternates strictly and every tool call id
// is answered before the next model call sees the history.
func (r *Runner) run(ctx context.Context, st *runState) (Outcome, error) {
	for st.iteration < st.budget.MaxIterations {
		if err := ctx.Err(); err != nil {
			return r.fail(ctx, st, err)
		}
		st.iteration++

		comp, err := r.client.Complete(ctx, modelio.Request{
			Model:           st.model,
			System:          st.system,
			Messages:        st.msgs,
			Tools:           st.tools,
			MaxOutputTokens: st.budget.MaxOutputTokens,
		})
		if err != nil {
			return r.fail(ctx, st, fmt.Errorf("model completion: %w", err))
		}
		st.usage = st.usage.Add(comp.Usage)

		if text := comp.Text(); text != "" {
			if st.output.Len() > 0 {
				st.output.WriteString("\n")
			}
			st.output.WriteString(text)
		}
		calls := comp.ToolCalls()

		r.report(ctx, st, Progress{Status: StatusRunning, Snapshot: r.snapshot(st, StatusRunning, nil)})

		if len(calls) == 0 || comp.StopReason != modelio.StopToolUse {
			st.msgs = st.msgs.Append(modelio.AssistantMessage(comp.Content...))
			return r.complete(ctx, st)
		}

		var results []modelio.ContentBlock
		var pending *PendingToolCall
		for _, call := range calls {
			if call.Name == ThinkToolName {
				// Reasoning scratchpad: acknowledged, never dispatched.
				results = append(results, modelio.ToolResultBlock(call.ID, thinkAck, false))
				continue
			}
			if r.policy.NeedsConfirmation(call.Name) {
				pending = &PendingToolCall{
					ID:           call.ID,
					Name:         call.Name,
					Input:        call.Input,
					Confirmation: r.policy.RenderConfirmation(call.Name, call.Input),
					PriorResults: toolResultData(results),
				}
				// Confirmation pauses the entire run; no further calls from
				// this batch execute before the resume decision.
				break
			}
			res, err := r.dispatcher.Execute(ctx, call, st.exec)
			if err != nil {
				return r.fail(ctx, st, fmt.Errorf("tool %s: %w", call.Name, err))
			}
			text := truncateResult(formatResult(res))
			st.log = append(st.log, ToolCallLogEntry{Name: call.Name, Input: call.Input, Result: text, OK: res.OK})
			results = append(results, modelio.ToolResultBlock(call.ID, text, !res.OK))
		}

		if pending != nil {
			st.msgs = st.msgs.Append(modelio.AssistantMessage(comp.Content...))
			return r.pause(ctx, st, pending)
		}

		if detectRepeatedCalls(st.log, loopGuardWindow) {
			r.report(ctx, st, Progress{
				Status:   StatusRunning,
				Message:  fmt.Sprintf("last %d tool calls follow a repeating pattern", loopGuardWindow),
				Snapshot: r.snapshot(st, StatusRunning, nil),
			})
		}

		st.msgs = st.msgs.Append(
			modelio.AssistantMessage(comp.Content...),
			modelio.ToolResultsMessage(results...),
		)
	}

	// Iteration budget exhausted: a normal termination mode, not an error.
	return r.complete(ctx, st)
}

func (r *Runner) complete(ctx context.Context, st *runState) (Outcome, error) {
	cost, err := r.rates.Cost(st.model, st.usage.InputTokens, st.usage.OutputTokens)
	if err != nil {
		return r.fail(ctx, st, fmt.Errorf("cost lookup: %w", err))
	}
	out := Outcome{
		RunID:      st.runID,
		Status:     StatusCompleted,
		Output:     st.output.String(),
		Iterations: st.iteration,
		ToolCalls:  st.log,
		Usage:      st.usage,
		Cost:       cost,
		Messages:   st.msgs.Clone(),
	}
	r.report(ctx, st, Progress{Status: StatusCompleted, Snapshot: r.snapshot(st, StatusCompleted, nil)})
	return out, nil
}

func (r *Runner) pause(ctx context.Context, st *runState, pending *PendingToolCall) (Outcome, error) {
	out := Outcome{
		RunID:      st.runID,
		Status:     StatusPaused,
		Output:     st.output.String(),
		Iterations: st.iteration,
		ToolCalls:  st.log,
		Usage:      st.usage,
		Messages:   st.msgs.Clone(),
		Pending:    pending,
		Reason:     pending.Confirmation,
	}
	r.report(ctx, st, Progress{
		Status:   StatusPaused,
		Message:  pending.Confirmation,
		Snapshot: r.snapshot(st, StatusPaused, pending),
	})
	return out, nil
}

func (r *Runner) fail(ctx context.Context, st *runState, cause error) (Outcome, error) {
	out := Outcome{
		RunID:        st.runID,
		Status:       StatusFailed,
		Iterations:   st.iteration,
		ToolCalls:    st.log,
		Usage:        st.usage,
		ErrorMessage: cause.Error(),
		Duration:     time.Since(st.started),
	}
	r.report(ctx, st, Progress{
		Status:   StatusFailed,
		Message:  cause.Error(),
		Snapshot: r.snapshot(st, StatusFailed, nil),
	})
	return out, cause
}

// snapshot builds the progress view of the current state. Paused snapshots
// are full fidelity (conversation plus pending call) because they alone
// must be enough to resume from another process.
func (r *Runner) snapshot(st *runState, status Status, pending *PendingToolCall) Snapshot {
	snap := Snapshot{
		RunID:         st.runID,
		Status:        status,
		Iteration:     st.iteration,
		MaxIterations: st.budget.MaxIterations,
		Output:        st.output.String(),
		ToolCalls:     st.log,
		Usage:         st.usage,
	}
	if status == StatusPaused {
		snap.Messages = st.msgs.Clone()
		snap.Pending = pending
	}
	return snap
}

// report delivers progress to the sink. Reporting failures are ignored:
// observability must never fail a run.
func (r *Runner) report(ctx context.Context, st *runState, p Progress) {
	_ = r.sink.Report(ctx, st.runID, p)
}

// toolResultData converts tool-result content blocks into their bare data,
// for carrying a partially processed batch across a pause.
func toolResultData(blocks []modelio.ContentBlock) []modelio.ToolResultData {
	var out []modelio.ToolResultData
	for _, b := range blocks {
		if b.Kind == modelio.ContentToolResult && b.ToolResult != nil {
			out = append(out, *b.ToolResult)
		}
	}
	return out
}
