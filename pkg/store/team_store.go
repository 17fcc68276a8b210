package store

import (
	"sort"
	"sync"

	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/routing"
)

// TeamStore holds the events routed to each team. Events are identified
// by their input sequence number so recurring instances sharing a UID stay
// distinct.
type TeamStore struct {
	mu sync.RWMutex

	// Map of sequence number to event
	events map[int]models.Event

	// Map of team to the sequence numbers of its events
	members map[routing.Team]map[int]struct{}
}

// NewTeamStore creates an empty TeamStore
func NewTeamStore() *TeamStore {
	return &TeamStore{
		events:  make(map[int]models.Event),
		members: make(map[routing.Team]map[int]struct{}),
	}
}

// Assign records event under seq and adds it to every given team. It is
// safe to call from multiple goroutines.
func (ts *TeamStore) Assign(seq int, event models.Event, teams []routing.Team) {
	if len(teams) == 0 {
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.events[seq] = event
	for _, team := range teams {
		if ts.members[team] == nil {
			ts.members[team] = make(map[int]struct{})
		}
		ts.members[team][seq] = struct{}{}
	}
}

// Events returns the team's events ordered by sequence number
func (ts *TeamStore) Events(team routing.Team) []models.Event {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	seqs := make([]int, 0, len(ts.members[team]))
	for seq := range ts.members[team] {
		seqs = append(seqs, seq)
	}
	sort.Ints(seqs)

	events := make([]models.Event, 0, len(seqs))
	for _, seq := range seqs {
		events = append(events, ts.events[seq])
	}
	return events
}

// Teams returns the teams holding at least one event, in canonical order
func (ts *TeamStore) Teams() []routing.Team {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	teams := make([]routing.Team, 0, len(ts.members))
	for _, team := range routing.AllTeams() {
		if len(ts.members[team]) > 0 {
			teams = append(teams, team)
		}
	}
	return teams
}

// Counts returns the number of events per non-empty team
func (ts *TeamStore) Counts() map[routing.Team]int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	counts := make(map[routing.Team]int, len(ts.members))
	for team, seqs := range ts.members {
		if len(seqs) > 0 {
			counts[team] = len(seqs)
		}
	}
	return counts
}

// Len returns the number of distinct events assigned to any team
func (ts *TeamStore) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return len(ts.events)
}

// Replace swaps in the contents of other. other must not be modified
// afterwards.
func (ts *TeamStore) Replace(other *TeamStore) {
	other.mu.RLock()
	events, members := other.events, other.members
	other.mu.RUnlock()

	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.events = events
	ts.members = members
}
