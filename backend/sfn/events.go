package sfn

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"
	"github.com/cschleiden/go-resume/core"
	"github.com/cschleiden/go-resume/history"
	"github.com/cschleiden/go-resume/payload"
)

// eventType maps a Step Functions event to the analyzer's event types. Any event whose type names a
// failure, abort, or timeout is failure class, including task and activity level ones.
func eventType(e types.HistoryEvent) history.EventType {
	switch {
	case e.StateEnteredEventDetails != nil:
		return history.EventType_StateEntered
	case e.StateExitedEventDetails != nil:
		return history.EventType_StateExited
	case e.Type == types.HistoryEventTypeExecutionSucceeded:
		return history.EventType_ExecutionSucceeded
	}

	t := string(e.Type)
	switch {
	case strings.Contains(t, "Failed"):
		return history.EventType_Failed
	case strings.Contains(t, "Aborted"):
		return history.EventType_Aborted
	case strings.Contains(t, "TimedOut"):
		return history.EventType_TimedOut
	}

	return history.EventType_Other
}

func toHistoryEvent(e types.HistoryEvent) *history.Event {
	et := eventType(e)

	var attributes interface{}
	switch et {
	case history.EventType_StateEntered:
		attributes = &history.StateEnteredAttributes{
			Name:  aws.ToString(e.StateEnteredEventDetails.Name),
			Input: payload.Payload(aws.ToString(e.StateEnteredEventDetails.Input)),
		}
	case history.EventType_StateExited:
		attributes = &history.StateExitedAttributes{
			Name:   aws.ToString(e.StateExitedEventDetails.Name),
			Output: payload.Payload(aws.ToString(e.StateExitedEventDetails.Output)),
		}
	case history.EventType_Failed, history.EventType_Aborted, history.EventType_TimedOut:
		attributes = failureAttributes(e)
	}

	return history.NewHistoryEvent(e.Id, aws.ToTime(e.Timestamp), et, attributes, history.SourceType(string(e.Type)))
}

func failureAttributes(e types.HistoryEvent) *history.FailureAttributes {
	switch {
	case e.ExecutionFailedEventDetails != nil:
		return &history.FailureAttributes{
			Error: aws.ToString(e.ExecutionFailedEventDetails.Error),
			Cause: aws.ToString(e.ExecutionFailedEventDetails.Cause),
		}
	case e.ExecutionAbortedEventDetails != nil:
		return &history.FailureAttributes{
			Error: aws.ToString(e.ExecutionAbortedEventDetails.Error),
			Cause: aws.ToString(e.ExecutionAbortedEventDetails.Cause),
		}
	case e.ExecutionTimedOutEventDetails != nil:
		return &history.FailureAttributes{
			Error: aws.ToString(e.ExecutionTimedOutEventDetails.Error),
			Cause: aws.ToString(e.ExecutionTimedOutEventDetails.Cause),
		}
	case e.TaskFailedEventDetails != nil:
		return &history.FailureAttributes{
			Error: aws.ToString(e.TaskFailedEventDetails.Error),
			Cause: aws.ToString(e.TaskFailedEventDetails.Cause),
		}
	}

	return &history.FailureAttributes{}
}

func toExecution(workflowID string, item types.ExecutionListItem) *core.Execution {
	return core.NewExecution(
		workflowID,
		aws.ToString(item.ExecutionArn),
		aws.ToString(item.Name),
		executionStatus(item.Status),
		aws.ToTime(item.StartDate),
	)
}

func executionStatus(s types.ExecutionStatus) core.ExecutionStatus {
	switch s {
	case types.ExecutionStatusSucceeded:
		return core.ExecutionStatusSucceeded
	case types.ExecutionStatusFailed:
		return core.ExecutionStatusFailed
	case types.ExecutionStatusTimedOut:
		return core.ExecutionStatusTimedOut
	case types.ExecutionStatusAborted:
		return core.ExecutionStatusAborted
	}

	// Running and pending redrive executions are still owned by the engine.
	return core.ExecutionStatusRunning
}

func startTime(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}

	return *t
}
