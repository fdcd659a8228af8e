// Package skew implements the put/call open-interest skew pipeline.
package skew

import (
	"math"
	"sort"

	"optionskew/internal/errors"
	"optionskew/internal/models"
)

// Delta band for the balanced comparison set. Calls qualify with delta in
// [MinDelta, MaxDelta], puts with delta in [-MaxDelta, -MinDelta]; each side
// is ranked by distance from the target magnitude.
const (
	MinDelta    = 0.10
	MaxDelta    = 0.30
	TargetDelta = 0.20
)

// SelectStrikes filters a delta map into balanced call and put candidate
// sets: in-band contracts per side, sorted by ascending distance from the
// 20-delta target, both sides truncated to the smaller side's count.
// Fails with ErrNoCandidates when either side is empty.
func SelectStrikes(deltas map[string]float64) (calls, puts []models.CandidateStrike, err error) {
	for symbol, delta := range deltas {
		switch {
		case delta >= MinDelta && delta <= MaxDelta:
			calls = append(calls, models.CandidateStrike{Symbol: symbol, Delta: delta})
		case delta >= -MaxDelta && delta <= -MinDelta:
			puts = append(puts, models.CandidateStrike{Symbol: symbol, Delta: delta})
		}
	}

	sortByTargetDistance(calls, TargetDelta)
	sortByTargetDistance(puts, -TargetDelta)

	n := len(calls)
	if len(puts) < n {
		n = len(puts)
	}
	if n == 0 {
		return nil, nil, errors.ErrNoCandidates
	}

	return calls[:n], puts[:n], nil
}

// sortByTargetDistance orders candidates by ascending distance from the
// target delta. Symbol order breaks exact ties so selection is
// deterministic across map iterations.
func sortByTargetDistance(candidates []models.CandidateStrike, target float64) {
	sort.Slice(candidates, func(i, j int) bool {
		di := math.Abs(candidates[i].Delta - target)
		dj := math.Abs(candidates[j].Delta - target)
		if di != dj {
			return di < dj
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
}
