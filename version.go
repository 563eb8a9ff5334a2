package notchbar

import (
	"strconv"
	"strings"
)

// Version is the SDK release version.
const Version = "1.0.0"

// CompareVersions compares two dot-separated version strings numerically,
// segment by segment, and returns -1, 0, or 1. Missing trailing segments and
// segments that fail integer parsing count as 0, so "1.2" equals "1.2.0" and
// "1.9.0" sorts below "1.10.0".
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av := segmentAt(as, i)
		bv := segmentAt(bs, i)
		switch {
		case av > bv:
			return 1
		case av < bv:
			return -1
		}
	}
	return 0
}

func segmentAt(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return 0
	}
	return v
}
