// Package rotation is the ordered-rotation primitive shared by the first
// market and the svincolati market. Rubata traverses its board sequentially
// and does not use it.
package rotation

import "github.com/fantamercato/market/markettypes"

// NextTurn advances cyclically from currentIndex, skipping members that
// passed or declared finished. It returns NoActiveMembers when the rotation
// is exhausted.
func NextTurn(turnOrder []string, passed, finished markettypes.MemberSet, currentIndex int) (int, error) {
	n := len(turnOrder)
	if n == 0 {
		return 0, markettypes.ErrNoActiveMembers
	}

	for i := 1; i <= n; i++ {
		idx := (currentIndex + i) % n
		member := turnOrder[idx]
		if passed.Has(member) || finished.Has(member) {
			continue
		}
		return idx, nil
	}

	return 0, markettypes.ErrNoActiveMembers
}

// ActiveMembers is the turn order minus passed and finished members.
func ActiveMembers(turnOrder []string, passed, finished markettypes.MemberSet) []string {
	active := []string{}
	for _, member := range turnOrder {
		if passed.Has(member) || finished.Has(member) {
			continue
		}
		active = append(active, member)
	}
	return active
}

// PhaseComplete reports whether no active members remain. Note that passed
// members count as active for completion purposes only when the caller
// clears the passed set between laps; completion here is strictly "everyone
// is passed or finished".
func PhaseComplete(turnOrder []string, passed, finished markettypes.MemberSet) bool {
	return len(ActiveMembers(turnOrder, passed, finished)) == 0
}
