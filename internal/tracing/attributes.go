package tracing

const (
	WorkflowID      = "workflow.id"
	ExecutionHandle = "execution.handle"
	ExecutionName   = "execution.name"

	RequestKind = "request.kind"
	RequestID   = "request.id"

	DecisionStatus = "decision.status"
	DecisionAction = "decision.action"

	HistoryEvents = "history.events"
)
