// Package sanitize strips privilege-escalation and command-chaining
// substrings from staged shell commands.
//
// This is a blunt denylist, not a shell parser. It matches raw substrings
// with no regard for word boundaries, so "ls -la" survives but "issue"
// loses everything up to and including the byte after "su".
package sanitize

import "strings"

const (
	// sudoSkip is the number of bytes dropped from the start of a "sudo"
	// match. It is one more than len("sudo"), so the byte following the
	// match is discarded too.
	sudoSkip = 5

	// suSkip is the number of bytes dropped from the start of an "su"
	// match when no "sudo" is present.
	suSkip = 3

	chain = "&&"
)

// Sanitize returns cmd with every "su"/"sudo" prefix removed and everything
// from the first "&&" onward discarded. It never fails; the result may be
// empty.
func Sanitize(cmd string) string {
	s := stripEscalation(cmd)
	if before, _, found := strings.Cut(s, chain); found {
		s = before
	}
	return s
}

// stripEscalation repeatedly cuts the string just past the first "sudo"
// (preferred) or "su" until neither occurs.
func stripEscalation(s string) string {
	for {
		if i := strings.Index(s, "sudo"); i >= 0 {
			s = suffixFrom(s, i+sudoSkip)
			continue
		}
		if i := strings.Index(s, "su"); i >= 0 {
			s = suffixFrom(s, i+suSkip)
			continue
		}
		return s
	}
}

func suffixFrom(s string, off int) string {
	if off >= len(s) {
		return ""
	}
	return s[off:]
}
