package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cschleiden/go-resume/payload"
)

var (
	ErrInvalidProperties   = errors.New("invalid properties")
	ErrMissingStateMachine = errors.New("missing " + PropStateMachine + " property")
)

type Properties struct {
	StateMachine string

	// StartTime is zero when no start time was given.
	StartTime time.Time

	ExecInput payload.Payload

	ResumeFrom string
}

// ParseProperties reads the resource properties of a lifecycle event. Values arrive as strings from
// CloudFormation, numbers are accepted as well.
func ParseProperties(props map[string]any) (Properties, error) {
	p := Properties{
		StateMachine: stringProperty(props, PropStateMachine),
		ResumeFrom:   stringProperty(props, PropResumeFrom),
	}

	if p.StateMachine == "" {
		return p, ErrMissingStateMachine
	}

	startTime, err := parseStartTime(props[PropStartTime])
	if err != nil {
		return p, err
	}
	p.StartTime = startTime

	switch v := props[PropExecInput].(type) {
	case nil:
	case string:
		p.ExecInput = payload.Payload(v)
	default:
		// Passed as an object instead of its JSON encoding
		b, err := json.Marshal(v)
		if err != nil {
			return p, fmt.Errorf("encoding %s: %w", PropExecInput, err)
		}
		p.ExecInput = payload.Payload(b)
	}

	return p, nil
}

func stringProperty(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func parseStartTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil

	case float64:
		return time.UnixMilli(int64(t)), nil

	case int64:
		return time.UnixMilli(t), nil

	case int:
		return time.UnixMilli(int64(t)), nil

	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, nil
		}

		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), nil
		}

		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing %s %q: expected epoch milliseconds or RFC 3339", PropStartTime, s)
		}

		return ts, nil
	}

	return time.Time{}, fmt.Errorf("parsing %s: unexpected type %T", PropStartTime, v)
}
