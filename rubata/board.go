package rubata

import (
	"sort"

	"github.com/fantamercato/market/markettypes"
)

// BuildBoard generates the rubata board from a snapshot of the league's
// contracts at phase start: one lot per active contract, sellers in league
// order, lots within a seller sorted by clause descending (ties by player
// id). The board is never regenerated mid-phase.
func BuildBoard(members []string, contracts markettypes.ContractStore) ([]markettypes.RubataBoardEntry, error) {
	board := []markettypes.RubataBoardEntry{}

	for _, seller := range members {
		active, err := contracts.ActiveForMember(seller)
		if err != nil {
			return nil, err
		}

		sort.Slice(active, func(i, j int) bool {
			if active[i].Clause != active[j].Clause {
				return active[i].Clause > active[j].Clause
			}
			return active[i].PlayerID < active[j].PlayerID
		})

		for _, contract := range active {
			board = append(board, markettypes.RubataBoardEntry{
				SellerID:      seller,
				RosterEntryID: contract.RosterEntryID,
				PlayerID:      contract.PlayerID,
				Salary:        contract.Salary,
				Clause:        contract.Clause,
				RubataPrice:   contract.RubataPrice(),
			})
		}
	}

	return board, nil
}
