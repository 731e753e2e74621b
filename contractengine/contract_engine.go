package contractengine

import (
	"errors"

	"code.cloudfoundry.org/lager"

	"github.com/fantamercato/market/ledger"
	"github.com/fantamercato/market/markettypes"
)

// Engine creates, renews and releases contracts. All arithmetic rules live
// here; the market engines call in after an acquisition and during the
// renewal phase.
type Engine struct {
	contracts  markettypes.ContractStore
	rosters    markettypes.RosterStore
	directory  markettypes.LeagueDirectory
	departures markettypes.DepartureStore
	ledger     *ledger.BudgetLedger
	rules      markettypes.Rules
	sink       markettypes.NotificationSink
	logger     lager.Logger
}

func New(
	contracts markettypes.ContractStore,
	rosters markettypes.RosterStore,
	directory markettypes.LeagueDirectory,
	departures markettypes.DepartureStore,
	budgetLedger *ledger.BudgetLedger,
	rules markettypes.Rules,
	sink markettypes.NotificationSink,
	logger lager.Logger,
) *Engine {
	return &Engine{
		contracts:  contracts,
		rosters:    rosters,
		directory:  directory,
		departures: departures,
		ledger:     budgetLedger,
		rules:      rules,
		sink:       sink,
		logger:     logger.Session("contract-engine"),
	}
}

// CreateInitialContract attaches the first contract to a roster entry. The
// salary must cover the acquisition price.
func (e *Engine) CreateInitialContract(rosterEntryID string, salary, duration int) (markettypes.Contract, error) {
	logger := e.logger.Session("create-initial-contract", lager.Data{
		"roster-entry-id": rosterEntryID,
		"salary":          salary,
		"duration":        duration,
	})

	entry, err := e.rosters.Get(rosterEntryID)
	if err != nil {
		logger.Error("failed-to-fetch-roster-entry", err)
		return markettypes.Contract{}, err
	}

	if !e.rules.ValidDuration(duration) {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindInvalidDuration,
			"duration %d is outside [1,%d]", duration, e.rules.MaxDuration)
	}
	if salary < entry.AcquisitionPrice {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindInsufficientClause,
			"salary %d is below the acquisition price of %d", salary, entry.AcquisitionPrice)
	}
	if _, err := e.contracts.Get(rosterEntryID); err == nil {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindStateConflict,
			"roster entry %s already has a contract", rosterEntryID)
	} else if !errors.Is(err, markettypes.ErrNotFound) {
		return markettypes.Contract{}, err
	}

	contract := markettypes.Contract{
		RosterEntryID: rosterEntryID,
		MemberID:      entry.MemberID,
		PlayerID:      entry.PlayerID,
		Salary:        salary,
		Duration:      duration,
		Clause:        e.rules.ClauseFor(salary, duration),
	}
	if err := e.contracts.Save(contract); err != nil {
		logger.Error("failed-to-save-contract", err)
		return markettypes.Contract{}, err
	}

	e.sink.Notify(markettypes.Event{
		Type: markettypes.EventContractCreated,
		Data: map[string]interface{}{"member_id": entry.MemberID, "player_id": entry.PlayerID},
	})
	logger.Info("created", lager.Data{"clause": contract.Clause})
	return contract, nil
}

// Renew applies a standard renewal or a spalma. A standard renewal never
// lowers salary or duration. A spalma is only legal from a one-semester
// contract, must extend the duration and must preserve the total contract
// value, in exchange for which the salary may drop.
func (e *Engine) Renew(rosterEntryID string, newSalary, newDuration int) (markettypes.Contract, error) {
	logger := e.logger.Session("renew", lager.Data{
		"roster-entry-id": rosterEntryID,
		"new-salary":      newSalary,
		"new-duration":    newDuration,
	})

	contract, err := e.contracts.Get(rosterEntryID)
	if err != nil {
		logger.Error("failed-to-fetch-contract", err)
		return markettypes.Contract{}, err
	}
	if !contract.Active() {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindAlreadyReleased,
			"contract for entry %s is no longer active", rosterEntryID)
	}
	if !e.rules.ValidDuration(newDuration) {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindInvalidDuration,
			"duration %d is outside [1,%d]", newDuration, e.rules.MaxDuration)
	}

	if err := validateRenewal(contract, newSalary, newDuration); err != nil {
		logger.Info("rejected", lager.Data{"reason": err.Error()})
		return markettypes.Contract{}, err
	}

	contract.Salary = newSalary
	contract.Duration = newDuration
	contract.Clause = e.rules.ClauseFor(newSalary, newDuration)
	if err := e.contracts.Save(contract); err != nil {
		logger.Error("failed-to-save-contract", err)
		return markettypes.Contract{}, err
	}

	e.sink.Notify(markettypes.Event{
		Type: markettypes.EventContractRenewed,
		Data: map[string]interface{}{"member_id": contract.MemberID, "player_id": contract.PlayerID},
	})
	logger.Info("renewed", lager.Data{"clause": contract.Clause})
	return contract, nil
}

func validateRenewal(contract markettypes.Contract, newSalary, newDuration int) error {
	standard := newSalary >= contract.Salary && newDuration >= contract.Duration
	if standard {
		return nil
	}

	spalma := contract.Duration == 1 &&
		newDuration > contract.Duration &&
		newSalary*newDuration >= contract.Salary*contract.Duration
	if spalma {
		return nil
	}

	return markettypes.NewError(markettypes.KindInvalidRenewal,
		"renewal from (%d,%d) to (%d,%d) violates the monotonicity and spalma rules",
		contract.Salary, contract.Duration, newSalary, newDuration)
}

// ModifyPostAcquisition lets a buyer adjust the terms right after an
// acquisition. It is deliberately stricter than Renew and shares no logic
// with it: a spalma is a renewal-phase instrument and must never slip in
// here.
func (e *Engine) ModifyPostAcquisition(rosterEntryID string, newSalary, newDuration int) (markettypes.Contract, error) {
	logger := e.logger.Session("modify-post-acquisition", lager.Data{
		"roster-entry-id": rosterEntryID,
		"new-salary":      newSalary,
		"new-duration":    newDuration,
	})

	contract, err := e.contracts.Get(rosterEntryID)
	if err != nil {
		logger.Error("failed-to-fetch-contract", err)
		return markettypes.Contract{}, err
	}
	if !contract.Active() {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindAlreadyReleased,
			"contract for entry %s is no longer active", rosterEntryID)
	}
	if !e.rules.ValidDuration(newDuration) {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindInvalidDuration,
			"duration %d is outside [1,%d]", newDuration, e.rules.MaxDuration)
	}

	if newSalary < contract.Salary {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindInvalidRenewal,
			"post-acquisition terms may not lower the salary (%d -> %d)", contract.Salary, newSalary)
	}
	if newDuration > contract.Duration && newSalary <= contract.Salary {
		return markettypes.Contract{}, markettypes.NewError(markettypes.KindInvalidRenewal,
			"post-acquisition duration increase requires a salary increase")
	}

	contract.Salary = newSalary
	contract.Duration = newDuration
	contract.Clause = e.rules.ClauseFor(newSalary, newDuration)
	if err := e.contracts.Save(contract); err != nil {
		logger.Error("failed-to-save-contract", err)
		return markettypes.Contract{}, err
	}

	logger.Info("modified", lager.Data{"clause": contract.Clause})
	return contract, nil
}

// Release destroys a contract and frees the player. The cost, half the
// residual contract value rounded up, is charged against the member's raw
// budget immediately.
func (e *Engine) Release(rosterEntryID string) (int, error) {
	logger := e.logger.Session("release", lager.Data{"roster-entry-id": rosterEntryID})

	contract, err := e.contracts.Get(rosterEntryID)
	if err != nil {
		logger.Error("failed-to-fetch-contract", err)
		return 0, err
	}
	if !contract.Active() {
		return 0, markettypes.NewError(markettypes.KindAlreadyReleased,
			"contract for entry %s was already released", rosterEntryID)
	}

	cost := ReleaseCost(contract)
	if err := e.directory.AdjustBudget(contract.MemberID, -cost); err != nil {
		logger.Error("failed-to-charge-release-cost", err)
		return 0, err
	}
	if err := e.contracts.Delete(rosterEntryID); err != nil {
		logger.Error("failed-to-delete-contract", err)
		return 0, err
	}
	if err := e.rosters.Remove(rosterEntryID); err != nil {
		logger.Error("failed-to-remove-roster-entry", err)
		return 0, err
	}

	e.sink.Notify(markettypes.Event{
		Type: markettypes.EventContractReleased,
		Data: map[string]interface{}{"member_id": contract.MemberID, "player_id": contract.PlayerID, "cost": cost},
	})
	logger.Info("released", lager.Data{"cost": cost})
	return cost, nil
}

// ReleaseCost is half the residual contract value, rounded up.
func ReleaseCost(contract markettypes.Contract) int {
	return (contract.Salary*contract.Duration + 1) / 2
}

// RecordDeparture handles a contracted player leaving the league player
// pool. On RELEASE the contract is torn down without charge and the member
// is owed an indemnity equal to the release cost; on KEEP the contract
// stays.
func (e *Engine) RecordDeparture(rosterEntryID string, reason markettypes.DepartureReason, choice markettypes.DepartureChoice) (markettypes.Departure, error) {
	logger := e.logger.Session("record-departure", lager.Data{
		"roster-entry-id": rosterEntryID,
		"reason":          reason,
		"choice":          choice,
	})

	contract, err := e.contracts.Get(rosterEntryID)
	if err != nil {
		logger.Error("failed-to-fetch-contract", err)
		return markettypes.Departure{}, err
	}

	departure := markettypes.Departure{
		MemberID: contract.MemberID,
		PlayerID: contract.PlayerID,
		Reason:   reason,
		Choice:   choice,
	}

	if choice == markettypes.DepartureRelease {
		departure.Indemnity = ReleaseCost(contract)
		if err := e.contracts.Delete(rosterEntryID); err != nil {
			logger.Error("failed-to-delete-contract", err)
			return markettypes.Departure{}, err
		}
		if err := e.rosters.Remove(rosterEntryID); err != nil {
			logger.Error("failed-to-remove-roster-entry", err)
			return markettypes.Departure{}, err
		}
	}

	if err := e.departures.Record(departure); err != nil {
		logger.Error("failed-to-record-departure", err)
		return markettypes.Departure{}, err
	}

	logger.Info("recorded", lager.Data{"indemnity": departure.Indemnity})
	return departure, nil
}

// TotalIndemnities sums the compensation owed for ESTERO departures the
// member chose to release. It feeds residual-budget projections and does not
// itself move credits.
func (e *Engine) TotalIndemnities(memberID string) (int, error) {
	departures, err := e.departures.ForMember(memberID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, departure := range departures {
		if departure.Reason == markettypes.DepartureEstero && departure.Choice == markettypes.DepartureRelease {
			total += departure.Indemnity
		}
	}
	return total, nil
}

// CheckConsolidation verifies a member's bilancio is non-negative. Renewal
// drafts may dip negative while staged; the renewal phase calls this before
// consolidating them.
func (e *Engine) CheckConsolidation(memberID string) error {
	bilancio, err := e.ledger.Bilancio(memberID)
	if err != nil {
		return err
	}
	if bilancio < 0 {
		return markettypes.NewError(markettypes.KindInsufficientBudget,
			"consolidating would leave a negative bilancio of %d", bilancio)
	}
	return nil
}
