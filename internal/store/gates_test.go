package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePlan(t *testing.T) {
	require.True(t, ParsePlan("## Plan\nAPPROACH: do the thing\n"))
	require.True(t, ParsePlan("## Plan\nTOUCHING: a.go, b.go\n"))
	require.False(t, ParsePlan("## Plan\nsome prose with no markers\n"))
	require.False(t, ParsePlan("no plan section here"))
}

func TestParseHandoff(t *testing.T) {
	require.True(t, ParseHandoff("## Handoff\nDONE: implemented\n"))
	require.True(t, ParseHandoff("## Plan\nAPPROACH: x\n\n## Handoff\nREMAINING: tests\n"))
	require.False(t, ParseHandoff("## Handoff\nnothing useful\n"))
}

func TestParseReview(t *testing.T) {
	v, ok := ParseReview("## Review\nVerdict: PASS\n")
	require.True(t, ok)
	require.Equal(t, VerdictPass, v)

	v, ok = ParseReview("## Review\nVerdict: fail\n")
	require.True(t, ok)
	require.Equal(t, VerdictFail, v)

	_, ok = ParseReview("## Review\nno verdict line\n")
	require.False(t, ok)

	_, ok = ParseReview("nothing at all")
	require.False(t, ok)
}

func TestSection_StopsAtNextHeading(t *testing.T) {
	body := "## Plan\nAPPROACH: x\n\n## Handoff\nDONE: y\n"
	s, ok := section(body, "Plan")
	require.True(t, ok)
	require.NotContains(t, s, "DONE:")
	require.Contains(t, s, "APPROACH:")
}
