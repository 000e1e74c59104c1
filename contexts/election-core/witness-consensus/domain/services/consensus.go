package services

import (
	"time"

	"github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus/domain/entities"
)

// DefaultMinWitnesses is the number of distinct witnesses whose results must
// match exactly before a station is called verified.
const DefaultMinWitnesses = 3

// ConsensusPolicy decides whether a station's live submissions agree closely
// enough to call the result verified. It is pure: evaluating the same
// submission set twice yields the same outcome, so the inline submission path
// and the recovery sweep share it safely.
type ConsensusPolicy struct {
	MinWitnesses int
}

// ConsensusOutcome is the result of evaluating one station's submissions.
type ConsensusOutcome struct {
	Status          entities.StationStatus
	VerifiedResults map[string]int
	ConfidenceLevel float64
	WitnessCount    int
}

type resultGroup struct {
	key      string
	results  map[string]int
	size     int
	earliest time.Time
}

// Evaluate partitions submissions into groups by exact equality of their
// results map and applies the majority rule: the largest group wins when it
// holds at least MinWitnesses distinct witnesses, with confidence equal to
// the group's share of all live submissions. When two groups qualify at the
// same size, the group whose earliest contributing submission is oldest wins
// (first-formed majority); canonical key order is the final deterministic
// fallback. Fewer than MinWitnesses submissions always leaves the station
// pending, however well they agree.
func (p ConsensusPolicy) Evaluate(submissions []entities.Submission) ConsensusOutcome {
	minWitnesses := p.MinWitnesses
	if minWitnesses <= 0 {
		minWitnesses = DefaultMinWitnesses
	}

	total := len(submissions)
	pending := ConsensusOutcome{
		Status:          entities.StationStatusPending,
		ConfidenceLevel: 0,
		WitnessCount:    total,
	}
	if total < minWitnesses {
		return pending
	}

	groups := make(map[string]*resultGroup, total)
	for _, submission := range submissions {
		key := submission.ResultsKey()
		group, ok := groups[key]
		if !ok {
			group = &resultGroup{
				key:      key,
				results:  submission.CloneResults(),
				earliest: submission.Timestamp,
			}
			groups[key] = group
		}
		group.size++
		if submission.Timestamp.Before(group.earliest) {
			group.earliest = submission.Timestamp
		}
	}

	var winner *resultGroup
	for _, group := range groups {
		if winner == nil || groupBeats(group, winner) {
			winner = group
		}
	}
	if winner == nil || winner.size < minWitnesses {
		return pending
	}

	return ConsensusOutcome{
		Status:          entities.StationStatusVerified,
		VerifiedResults: winner.results,
		ConfidenceLevel: float64(winner.size) / float64(total),
		WitnessCount:    total,
	}
}

// groupBeats orders candidate majority groups: larger size first, then the
// earlier-formed group, then canonical key so map iteration order never
// decides a tie.
func groupBeats(a, b *resultGroup) bool {
	if a.size != b.size {
		return a.size > b.size
	}
	if !a.earliest.Equal(b.earliest) {
		return a.earliest.Before(b.earliest)
	}
	return a.key < b.key
}
