package ledger

import (
	"github.com/fantamercato/market/markettypes"
)

// BudgetLedger computes spendable balances. Every money-gated action in the
// engine consults it immediately before the check, under the session lock,
// so the value can never be stale with respect to concurrent contract
// mutation.
type BudgetLedger struct {
	directory markettypes.LeagueDirectory
	contracts markettypes.ContractStore
}

func New(directory markettypes.LeagueDirectory, contracts markettypes.ContractStore) *BudgetLedger {
	return &BudgetLedger{
		directory: directory,
		contracts: contracts,
	}
}

// Bilancio is the member's raw budget minus the salaries committed by their
// active contracts.
func (l *BudgetLedger) Bilancio(memberID string) (int, error) {
	member, err := l.directory.Member(memberID)
	if err != nil {
		return 0, err
	}

	contracts, err := l.contracts.ActiveForMember(memberID)
	if err != nil {
		return 0, err
	}

	committed := 0
	for _, contract := range contracts {
		committed += contract.Salary
	}

	return member.RawBudget - committed, nil
}

// CheckAffordable rejects an amount exceeding the member's bilancio.
func (l *BudgetLedger) CheckAffordable(memberID string, amount int) error {
	bilancio, err := l.Bilancio(memberID)
	if err != nil {
		return err
	}
	if amount > bilancio {
		return markettypes.NewError(markettypes.KindInsufficientBudget,
			"bid of %d exceeds available bilancio of %d", amount, bilancio)
	}
	return nil
}

// CheckCanNominate requires enough bilancio to open an auction and still
// afford one legal raise above it.
func (l *BudgetLedger) CheckCanNominate(memberID string, threshold int) error {
	bilancio, err := l.Bilancio(memberID)
	if err != nil {
		return err
	}
	if bilancio < threshold {
		return markettypes.NewError(markettypes.KindInsufficientBudget,
			"nominating requires at least %d credits of bilancio, have %d", threshold, bilancio)
	}
	return nil
}
