package routing

import "regexp"

var getsGoStartSpelling = regexp.MustCompile(`(?i)getsgo\s*start`)

// NormalizeSummary rewrites every spelling of "GetsGo Start" to the
// canonical GetsGoStart. It only changes what is published; Route matches
// the raw summary.
func NormalizeSummary(summary string) string {
	return getsGoStartSpelling.ReplaceAllLiteralString(summary, string(TeamGetsGoStart))
}
