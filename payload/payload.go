package payload

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ResumeToKey is the input field read by the resume dispatcher to select the state to jump into.
const ResumeToKey = "resumeTo"

var (
	ErrInvalidJSON = errors.New("payload is not valid JSON")
	ErrNotObject   = errors.New("payload is not a JSON object")
)

// Payload is a JSON document passed as workflow input.
type Payload []byte

// Empty returns true if the payload holds no document.
func (p Payload) Empty() bool {
	return len(bytes.TrimSpace(p)) == 0
}

func (p Payload) String() string {
	return string(p)
}

// MarshalJSON embeds the payload verbatim. An empty payload marshals to null.
func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Empty() {
		return []byte("null"), nil
	}

	return p, nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	*p = append((*p)[0:0], data...)
	return nil
}

// Parse validates that raw holds a JSON object and returns it as a payload.
func Parse(raw []byte) (Payload, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}

	if !gjson.ParseBytes(raw).IsObject() {
		return nil, ErrNotObject
	}

	return Payload(bytes.TrimSpace(raw)), nil
}

// Default returns a payload that only carries the resume target.
func Default(state string) Payload {
	p, _ := sjson.SetBytes([]byte("{}"), ResumeToKey, state)
	return p
}

// ResumeTo returns the resume target of p and whether the field is present.
func ResumeTo(p Payload) (string, bool) {
	r := gjson.GetBytes(p, ResumeToKey)
	if !r.Exists() {
		return "", false
	}

	return r.String(), true
}

// WithResumeTo returns a copy of p with the resume target set to state. Other fields keep their order.
func WithResumeTo(p Payload, state string) (Payload, error) {
	if p.Empty() {
		return Default(state), nil
	}

	parsed, err := Parse(p)
	if err != nil {
		return nil, err
	}

	out, err := sjson.SetBytes([]byte(parsed), ResumeToKey, state)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", ResumeToKey, err)
	}

	return out, nil
}

// EnsureResumeTo adds an empty resume target to p unless one is present. An empty payload becomes {"resumeTo": ""}.
func EnsureResumeTo(p Payload) (Payload, error) {
	if p.Empty() {
		return Default(""), nil
	}

	parsed, err := Parse(p)
	if err != nil {
		return nil, err
	}

	if _, ok := ResumeTo(parsed); ok {
		return parsed, nil
	}

	return WithResumeTo(parsed, "")
}
