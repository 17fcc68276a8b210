// Package routing decides which team calendars an event belongs to, based on
// the patterns found in its summary.
//
// Routing runs an ordered rule table into an accumulator. Several rules may
// fire for a single summary and their teams add up. Once every rule has run,
// a single exclusion pass narrows an ambiguous "12" down to the sub-team the
// summary names explicitly.
package routing

import "strings"

// Decision is the outcome of routing one summary.
type Decision struct {
	Teams    Set
	Fired    []string // names of the rules that added teams, in evaluation order
	Excluded []Team   // teams removed by the exclusion pass
}

// Router routes summaries through a fixed rule table. A Router holds no
// mutable state and may be shared between goroutines.
type Router struct {
	rules []rule
}

// NewRouter returns a router using the built-in rule table.
func NewRouter() *Router {
	return &Router{rules: defaultRules}
}

var defaultRouter = NewRouter()

// Route returns the teams for an event with the given summary read from
// the given feed URL, using the built-in rule table.
func Route(summary, feedURL string) Set {
	return defaultRouter.Route(summary, feedURL)
}

// Route returns the set of teams the event belongs to. The set may be empty.
func (r *Router) Route(summary, feedURL string) Set {
	return r.Trace(summary, feedURL).Teams
}

// Trace routes the summary and reports which rules contributed.
func (r *Router) Trace(summary, feedURL string) Decision {
	s := newScan(summary, feedURL)
	acc := newAccumulator()
	var fired []string
	for _, rl := range r.rules {
		if rl.when(s, acc) {
			acc.add(rl.name, rl.teams...)
			fired = append(fired, rl.name)
		}
	}
	excluded := exclude(s, acc)
	return Decision{
		Teams:    acc.set(),
		Fired:    fired,
		Excluded: excluded,
	}
}

// exclude resolves the ambiguous bare 12. When both sub-teams are present and
// the summary literally names one of them, the other one is dropped, but
// only if nothing except the ambiguous rule put it there. Both literals are
// checked independently.
func exclude(s *scan, acc *accumulator) []Team {
	if !acc.has(TeamU12Dot1) || !acc.has(TeamU12Dot2) {
		return nil
	}
	var drop []Team
	if strings.Contains(s.lower, "u12.2") && acc.onlyFrom(TeamU12Dot1, ruleAmbiguous12) {
		drop = append(drop, TeamU12Dot1)
	}
	if strings.Contains(s.lower, "u12.1") && acc.onlyFrom(TeamU12Dot2, ruleAmbiguous12) {
		drop = append(drop, TeamU12Dot2)
	}
	for _, t := range drop {
		acc.remove(t)
	}
	return drop
}

// accumulator collects teams together with the rules that added them.
type accumulator struct {
	origins map[Team][]string
}

func newAccumulator() *accumulator {
	return &accumulator{origins: make(map[Team][]string)}
}

func (a *accumulator) add(ruleName string, teams ...Team) {
	for _, t := range teams {
		a.origins[t] = append(a.origins[t], ruleName)
	}
}

func (a *accumulator) has(t Team) bool {
	_, ok := a.origins[t]
	return ok
}

// onlyFrom reports whether t was added by ruleName and no other rule.
func (a *accumulator) onlyFrom(t Team, ruleName string) bool {
	origins, ok := a.origins[t]
	if !ok {
		return false
	}
	for _, o := range origins {
		if o != ruleName {
			return false
		}
	}
	return true
}

func (a *accumulator) remove(t Team) {
	delete(a.origins, t)
}

func (a *accumulator) set() Set {
	s := make(Set, len(a.origins))
	for t := range a.origins {
		s[t] = struct{}{}
	}
	return s
}
