package decision

import (
	"strconv"
	"strings"
	"time"
)

// maxRunNameLength is the longest execution name Step Functions accepts.
const maxRunNameLength = 80

// runName builds <prefix>-<requestID>-<unixMillis>. Characters outside [A-Za-z0-9_-] are replaced, and
// the prefix and request id are shortened so the timestamp always survives.
func runName(prefix, requestID string, now time.Time) string {
	suffix := "-" + strconv.FormatInt(now.UnixMilli(), 10)

	head := sanitize(prefix + "-" + requestID)
	if len(head)+len(suffix) > maxRunNameLength {
		head = head[:maxRunNameLength-len(suffix)]
	}

	return head + suffix
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
