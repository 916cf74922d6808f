package log

const (
	NamespaceKey = "resume"

	WorkflowIDKey      = NamespaceKey + ".workflow.id"
	ExecutionHandleKey = NamespaceKey + ".execution.handle"
	ExecutionNameKey   = NamespaceKey + ".execution.name"
	ExecutionStatusKey = NamespaceKey + ".execution.status"

	RequestKindKey = NamespaceKey + ".request.kind"
	RequestIDKey   = NamespaceKey + ".request.id"
	PhysicalIDKey  = NamespaceKey + ".request.physical_id"
	PropertyKey    = NamespaceKey + ".request.property"

	StatusKey = NamespaceKey + ".status"
	ActionKey = NamespaceKey + ".action"

	FailedStateKey    = NamespaceKey + ".continuation.failed_state"
	SucceededStateKey = NamespaceKey + ".continuation.succeeded_state"
	ResumeToKey       = NamespaceKey + ".continuation.resume_to"

	EventCountKey = NamespaceKey + ".history.events"

	ScopeKey = NamespaceKey + ".graph.scope"

	AttemptKey  = NamespaceKey + ".attempt"
	DurationKey = NamespaceKey + ".duration_ms"

	ErrorKey = "error"
	StackKey = "stack"
)
