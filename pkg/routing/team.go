package routing

import (
	"errors"
	"fmt"
)

// Team is a destination calendar an event can be routed to
type Team string

const (
	TeamU9            Team = "U9"
	TeamU10           Team = "U10"
	TeamU11           Team = "U11"
	TeamU12Dot1       Team = "U12.1"
	TeamU12Dot2       Team = "U12.2"
	TeamWU12          Team = "wU12"
	TeamMU14          Team = "mU14"
	TeamWU14          Team = "wU14"
	TeamSchultraining Team = "Schultraining"
	TeamGetsGoStart   Team = "GetsGoStart"
)

// ErrUnknownTeam is returned by ParseTeam for names outside the team set.
var ErrUnknownTeam = errors.New("unknown team")

var allTeams = []Team{
	TeamU9, TeamU10, TeamU11, TeamU12Dot1, TeamU12Dot2,
	TeamWU12, TeamMU14, TeamWU14, TeamSchultraining, TeamGetsGoStart,
}

// AllTeams returns every team in canonical order.
func AllTeams() []Team {
	out := make([]Team, len(allTeams))
	copy(out, allTeams)
	return out
}

// ParseTeam returns the team with the given name.
func ParseTeam(name string) (Team, error) {
	for _, t := range allTeams {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTeam, name)
}

// AgeGroup reports whether keyword exclusion applies to the team. School
// trainings and GetsGoStart sessions are published regardless of keywords.
func (t Team) AgeGroup() bool {
	return t != TeamSchultraining && t != TeamGetsGoStart
}

func (t Team) String() string {
	return string(t)
}

// Set is an unordered set of teams.
type Set map[Team]struct{}

// NewSet returns a set holding the given teams.
func NewSet(teams ...Team) Set {
	s := make(Set, len(teams))
	for _, t := range teams {
		s[t] = struct{}{}
	}
	return s
}

// Has reports whether t is in the set.
func (s Set) Has(t Team) bool {
	_, ok := s[t]
	return ok
}

// Len returns the number of teams in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members in canonical team order.
func (s Set) Sorted() []Team {
	out := make([]Team, 0, len(s))
	for _, t := range allTeams {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Equal reports whether both sets hold the same teams.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}
