// Package runloop implements the agent execution loop: a multi-turn
// conversation between a model and a set of host-provided tools, driven to a
// terminal outcome under iteration and output-token budgets.
//
// The core type is Runner. A run starts from a single user message (Run) and
// alternates model calls with tool executions until the model stops
// requesting tools, the iteration budget is exhausted, a gated tool call
// pauses the run for human confirmation, or an infrastructure error fails
// it. Paused runs are re-entered with Resume, which converts the human
// decision into exactly one tool result and continues the loop.
//
// Collaborators are injected as interfaces: modelio.Client for the model,
// Dispatcher for tool execution, ConfirmationPolicy for gating, and
// ProgressSink for per-iteration observability. The pricing table converts
// accumulated token usage into a dollar cost on completion.
package runloop
