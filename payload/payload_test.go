package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Parse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"object", `{"a":1}`, nil},
		{"object with whitespace", "  {\"a\": 1}\n", nil},
		{"invalid", `{"a":`, ErrInvalidJSON},
		{"array", `[1,2]`, ErrNotObject},
		{"string", `"x"`, ErrNotObject},
		{"empty", ``, ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.raw))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, p)
				return
			}

			require.NoError(t, err)
			require.JSONEq(t, tt.raw, p.String())
		})
	}
}

func Test_WithResumeTo_PreservesFields(t *testing.T) {
	p, err := WithResumeTo(Payload(`{"resumeTo":"", "x":1}`), "Deploy")
	require.NoError(t, err)
	require.JSONEq(t, `{"resumeTo":"Deploy","x":1}`, p.String())

	r, ok := ResumeTo(p)
	require.True(t, ok)
	require.Equal(t, "Deploy", r)
}

func Test_WithResumeTo_Empty(t *testing.T) {
	p, err := WithResumeTo(nil, "Build")
	require.NoError(t, err)
	require.JSONEq(t, `{"resumeTo":"Build"}`, p.String())
}

func Test_WithResumeTo_Malformed(t *testing.T) {
	_, err := WithResumeTo(Payload(`not json`), "Build")
	require.ErrorIs(t, err, ErrInvalidJSON)
}

func Test_EnsureResumeTo(t *testing.T) {
	p, err := EnsureResumeTo(nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"resumeTo":""}`, p.String())

	p, err = EnsureResumeTo(Payload(`{"x":true}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"x":true,"resumeTo":""}`, p.String())

	p, err = EnsureResumeTo(Payload(`{"resumeTo":"Test"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"resumeTo":"Test"}`, p.String())
}

func Test_Payload_MarshalJSON(t *testing.T) {
	v := struct {
		Input Payload `json:"input"`
		Empty Payload `json:"empty"`
	}{
		Input: Payload(`{"resumeTo":"A"}`),
	}

	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `{"input":{"resumeTo":"A"},"empty":null}`, string(b))

	var out struct {
		Input Payload `json:"input"`
		Empty Payload `json:"empty"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.JSONEq(t, `{"resumeTo":"A"}`, out.Input.String())
	require.True(t, out.Empty.Empty())
}
