// Package events defines the typed event contract between the webhook
// transport and the orchestrator.
//
// Inbound events mirror the voice platform's webhook types:
//
//   - SessionStarted (session.start): a call began; the agent greets without
//     a model invocation.
//   - SessionUpdated (session.update): lifecycle metadata update, acknowledged
//     with no generation.
//   - SessionEnded (session.end): the call ended.
//   - UserMessage (message): a finished user utterance, optionally carrying an
//     Interruption describing a previous assistant turn that was cut off.
//   - Unknown: any unrecognized webhook type, acknowledged as a no-op.
//
// Diagnostic events are emitted by the orchestrator for observers such as the
// debug stream:
//
//   - ToolCallStarted (tool_call.started): tool execution started.
//   - ToolCallCompleted (tool_call.completed): tool execution completed.
//   - ToolCallFailed (tool_call.failed): tool execution failed.
//   - TurnCommitted (turn_state.committed): a turn was appended to a
//     conversation's history.
package events
