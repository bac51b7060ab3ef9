package store

import (
	"regexp"
	"strings"
)

// ReviewVerdict is the parsed verdict from a task body's "## Review" section.
type ReviewVerdict string

// Review verdicts.
const (
	VerdictPass ReviewVerdict = "PASS"
	VerdictFail ReviewVerdict = "FAIL"
)

var verdictPattern = regexp.MustCompile(`(?i)^\s*Verdict:\s*(PASS|FAIL)\s*$`)

// section extracts the lines belonging to a "## <name>" section: every line
// after the heading up to (but not including) the next "## " heading or
// end of body.
func section(body, name string) (string, bool) {
	lines := strings.Split(body, "\n")
	heading := "## " + name
	start := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == heading {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return "", false
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "## ") {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n"), true
}

func sectionHasAnyLine(section string, prefixes ...string) bool {
	for _, line := range strings.Split(section, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, p := range prefixes {
			if strings.HasPrefix(trimmed, p) {
				return true
			}
		}
	}
	return false
}

// ParsePlan reports whether body contains a valid "## Plan" section: one
// with at least an APPROACH: or TOUCHING: line.
func ParsePlan(body string) bool {
	s, ok := section(body, "Plan")
	if !ok {
		return false
	}
	return sectionHasAnyLine(s, "APPROACH:", "TOUCHING:")
}

// ParseHandoff reports whether body contains a valid "## Handoff" section:
// one with at least one of DONE:, REMAINING:, DECISIONS:, UNCERTAIN:.
func ParseHandoff(body string) bool {
	s, ok := section(body, "Handoff")
	if !ok {
		return false
	}
	return sectionHasAnyLine(s, "DONE:", "REMAINING:", "DECISIONS:", "UNCERTAIN:")
}

// ParseReview extracts the verdict from body's "## Review" section. The
// second return value is false if no section, or no recognizable verdict
// line, is present.
func ParseReview(body string) (ReviewVerdict, bool) {
	s, ok := section(body, "Review")
	if !ok {
		return "", false
	}
	for _, line := range strings.Split(s, "\n") {
		m := verdictPattern.FindStringSubmatch(line)
		if m != nil {
			return ReviewVerdict(strings.ToUpper(m[1])), true
		}
	}
	return "", false
}
