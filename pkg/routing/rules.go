package routing

import (
	"regexp"
	"strings"
)

// Rule names, reported by Trace.
const (
	ruleSchultraining = "schultraining"
	ruleGetsGoStart   = "getsgo-start"
	ruleMixedU14      = "x-u14"
	ruleMaleU14       = "m-u14"
	ruleFemaleU14     = "w-u14"
	ruleFemaleU12     = "w-u12"
	ruleFemaleU12U14  = "w-u12-14"
	ruleNumber9       = "number-9"
	ruleNumber10      = "number-10"
	ruleNumber11      = "number-11"
	ruleNumber12Dot1  = "number-12.1"
	ruleNumber12Dot2  = "number-12.2"
	ruleAmbiguous12   = "ambiguous-12"
	ruleCombo9And10   = "combo-9-10"
	ruleCombo11And12  = "combo-11-12"
	ruleGoogleMU14    = "google-mu14"
)

var (
	getsGoStartPattern = regexp.MustCompile(`getsgo\s*start`)

	// Gender-prefixed age groups. Digits matched here are not seen by the
	// bare-number rules.
	mixedU14Pattern     = regexp.MustCompile(`\bx\s*u?14\b`)
	maleU14Pattern      = regexp.MustCompile(`\bm\s*u?14\b`)
	femaleU14Pattern    = regexp.MustCompile(`\bw\s*u?14\b`)
	femaleU12Pattern    = regexp.MustCompile(`\bw\s*u?12\b`)
	femaleU12U14Pattern = regexp.MustCompile(`\bw\s*u?12\s*[/-]\s*14\b`)

	prefixPatterns = []*regexp.Regexp{
		femaleU12U14Pattern, mixedU14Pattern, maleU14Pattern, femaleU14Pattern, femaleU12Pattern,
	}

	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

	// Joined ranges. The suffix rejects a following digit or decimal part so
	// that "9/100" or "11/12.1" do not count.
	combo9And10Pattern  = regexp.MustCompile(`(?:^|[^\d.])9\s*[/-]\s*(?:u\s*)?10(?:$|[^\d.]|\.(?:$|\D))`)
	combo11And12Pattern = regexp.MustCompile(`(?:^|[^\d.])11\s*/\s*(?:u\s*)?12(?:$|[^\d.]|\.(?:$|\D))`)
)

// scan is the pre-processed summary every rule looks at.
type scan struct {
	lower    string
	feedURL string
	numbers  map[string]bool
}

func newScan(summary, feedURL string) *scan {
	lower := strings.ToLower(summary)
	return &scan{
		lower:    lower,
		feedURL: feedURL,
		numbers:  bareNumbers(lower),
	}
}

// bareNumbers collects the numeric tokens left after blanking every
// gender-prefixed match.
func bareNumbers(lower string) map[string]bool {
	blanked := []byte(lower)
	for _, p := range prefixPatterns {
		for _, loc := range p.FindAllStringIndex(lower, -1) {
			for i := loc[0]; i < loc[1]; i++ {
				blanked[i] = ' '
			}
		}
	}
	numbers := make(map[string]bool)
	for _, n := range numberPattern.FindAllString(string(blanked), -1) {
		numbers[n] = true
	}
	return numbers
}

// rule adds teams when its predicate holds. Predicates may inspect teams
// added by earlier rules.
type rule struct {
	name  string
	when  func(s *scan, acc *accumulator) bool
	teams []Team
}

func contains(substr string) func(*scan, *accumulator) bool {
	return func(s *scan, _ *accumulator) bool { return strings.Contains(s.lower, substr) }
}

func matches(p *regexp.Regexp) func(*scan, *accumulator) bool {
	return func(s *scan, _ *accumulator) bool { return p.MatchString(s.lower) }
}

func number(n string) func(*scan, *accumulator) bool {
	return func(s *scan, _ *accumulator) bool { return s.numbers[n] }
}

// defaultRules is the rule table in evaluation order.
var defaultRules = []rule{
	{name: ruleSchultraining, when: contains("schultraining"), teams: []Team{TeamSchultraining}},
	{name: ruleGetsGoStart, when: matches(getsGoStartPattern), teams: []Team{TeamGetsGoStart}},
	{name: ruleMixedU14, when: matches(mixedU14Pattern), teams: []Team{TeamMU14, TeamWU14}},

	{name: ruleMaleU14, when: matches(maleU14Pattern), teams: []Team{TeamMU14}},
	{name: ruleFemaleU14, when: matches(femaleU14Pattern), teams: []Team{TeamWU14}},
	{name: ruleFemaleU12, when: matches(femaleU12Pattern), teams: []Team{TeamWU12}},
	{name: ruleFemaleU12U14, when: matches(femaleU12U14Pattern), teams: []Team{TeamWU12, TeamWU14}},

	{name: ruleNumber9, when: number("9"), teams: []Team{TeamU9}},
	{name: ruleNumber10, when: number("10"), teams: []Team{TeamU10}},
	{name: ruleNumber11, when: number("11"), teams: []Team{TeamU11}},
	{name: ruleNumber12Dot1, when: number("12.1"), teams: []Team{TeamU12Dot1}},
	{name: ruleNumber12Dot2, when: number("12.2"), teams: []Team{TeamU12Dot2}},
	{
		name: ruleAmbiguous12,
		when: func(s *scan, _ *accumulator) bool {
			return s.numbers["12"] && !s.numbers["12.1"] && !s.numbers["12.2"]
		},
		teams: []Team{TeamU12Dot1, TeamU12Dot2},
	},

	{name: ruleCombo9And10, when: matches(combo9And10Pattern), teams: []Team{TeamU9, TeamU10}},
	{name: ruleCombo11And12, when: matches(combo11And12Pattern), teams: []Team{TeamU11, TeamU12Dot1, TeamWU12}},

	// One upstream feed files part of the U12.1 squad under mU14.
	{
		name: ruleGoogleMU14,
		when: func(s *scan, acc *accumulator) bool {
			return acc.has(TeamMU14) && IsGoogleFeed(s.feedURL)
		},
		teams: []Team{TeamU12Dot1},
	},
}

// IsGoogleFeed reports whether the feed URL points at Google Calendar.
func IsGoogleFeed(feedURL string) bool {
	return strings.Contains(strings.ToLower(feedURL), "google")
}
