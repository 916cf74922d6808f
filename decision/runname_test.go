package decision

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_RunName(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		name      string
		prefix    string
		requestID string
		want      string
	}{
		{"plain", "ResumeManager", "abc-123", "ResumeManager-abc-123-1700000000123"},
		{"invalid characters", "Resume Manager", "a/b:c", "Resume_Manager-a_b_c-1700000000123"},
		{"unicode", "Rés", "x", "R_s-x-1700000000123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, runName(tt.prefix, tt.requestID, now))
		})
	}
}

func Test_RunName_Truncated(t *testing.T) {
	name := runName("ResumeManager", strings.Repeat("x", 100), time.UnixMilli(1700000000123))

	require.Len(t, name, maxRunNameLength)
	require.True(t, strings.HasPrefix(name, "ResumeManager-xxx"))
	require.True(t, strings.HasSuffix(name, "-1700000000123"))
}
