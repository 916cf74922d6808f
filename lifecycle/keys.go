package lifecycle

// Resource properties
const (
	// PropStateMachine is the workflow to manage, e.g. a state machine ARN.
	PropStateMachine = "StateMachine"

	// PropStartTime delays the first execution, as epoch milliseconds or RFC 3339.
	PropStartTime = "StartTime"

	// PropExecInput is a JSON object used as input of the next execution.
	PropExecInput = "ExecInput"

	// PropLastCfnUpdate changes on every deployment so an update event is always delivered.
	PropLastCfnUpdate = "LastCfnUpdate"

	// PropResumeFrom names a state to re-run from, with the input it last received.
	PropResumeFrom = "ResumeFrom"
)

// Reported attributes
const (
	AttrActualStartTime  = "ActualStartTime"
	AttrCurrentStatus    = "CurrentStatus"
	AttrTaskStates       = "AttrTaskStates"
	AttrLastExecutionArn = "LastExecutionArn"
)

var attributeKeys = []string{
	AttrActualStartTime,
	AttrCurrentStatus,
	AttrTaskStates,
	AttrLastExecutionArn,
}
