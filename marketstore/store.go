package marketstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fantamercato/market/markettypes"
)

// Store is an in-memory implementation of every collaborator interface the
// engine consumes. The node binary and the simulation both run against it;
// a production deployment substitutes real backends per interface. The
// RosterStore, ContractStore and SessionStore views are exposed as facets
// because their method sets collide on a single receiver.
type Store struct {
	lock sync.Mutex

	members       map[string]markettypes.Member
	leagueMembers map[string][]string
	players       map[string]markettypes.Player
	rosters       map[string]markettypes.RosterEntry
	contracts     map[string]markettypes.Contract
	departures    map[string][]markettypes.Departure
	sessions      map[string]*markettypes.TurnSession
}

func New() *Store {
	return &Store{
		members:       map[string]markettypes.Member{},
		leagueMembers: map[string][]string{},
		players:       map[string]markettypes.Player{},
		rosters:       map[string]markettypes.RosterEntry{},
		contracts:     map[string]markettypes.Contract{},
		departures:    map[string][]markettypes.Departure{},
		sessions:      map[string]*markettypes.TurnSession{},
	}
}

func (s *Store) Rosters() *RosterStore     { return &RosterStore{s} }
func (s *Store) Contracts() *ContractStore { return &ContractStore{s} }
func (s *Store) Sessions() *SessionStore   { return &SessionStore{s} }

// AddMember registers a member and appends it to its league's ordered
// member list. Seeding helper, not part of any engine interface.
func (s *Store) AddMember(member markettypes.Member) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.members[member.ID]; !ok {
		s.leagueMembers[member.LeagueID] = append(s.leagueMembers[member.LeagueID], member.ID)
	}
	s.members[member.ID] = member
}

func (s *Store) AddPlayer(player markettypes.Player) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.players[player.ID] = player
}

// LeagueDirectory

func (s *Store) Members(leagueID string) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	ids := s.leagueMembers[leagueID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *Store) Member(memberID string) (markettypes.Member, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	member, ok := s.members[memberID]
	if !ok {
		return markettypes.Member{}, fmt.Errorf("member %s: %w", memberID, markettypes.ErrNotFound)
	}
	return member, nil
}

func (s *Store) AdjustBudget(memberID string, delta int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	member, ok := s.members[memberID]
	if !ok {
		return fmt.Errorf("member %s: %w", memberID, markettypes.ErrNotFound)
	}
	member.RawBudget += delta
	s.members[memberID] = member
	return nil
}

// PlayerCatalog

func (s *Store) Player(playerID string) (markettypes.Player, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	player, ok := s.players[playerID]
	if !ok {
		return markettypes.Player{}, fmt.Errorf("player %s: %w", playerID, markettypes.ErrNotFound)
	}
	return player, nil
}

// DepartureStore

func (s *Store) ForMember(memberID string) ([]markettypes.Departure, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]markettypes.Departure, len(s.departures[memberID]))
	copy(out, s.departures[memberID])
	return out, nil
}

func (s *Store) Record(departure markettypes.Departure) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.departures[departure.MemberID] = append(s.departures[departure.MemberID], departure)
	return nil
}

// RosterStore facet

type RosterStore struct {
	store *Store
}

func (r *RosterStore) Roster(memberID string) ([]markettypes.RosterEntry, error) {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()
	entries := []markettypes.RosterEntry{}
	for _, entry := range r.store.rosters {
		if entry.MemberID == memberID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (r *RosterStore) Get(rosterEntryID string) (markettypes.RosterEntry, error) {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()
	entry, ok := r.store.rosters[rosterEntryID]
	if !ok {
		return markettypes.RosterEntry{}, fmt.Errorf("roster entry %s: %w", rosterEntryID, markettypes.ErrNotFound)
	}
	return entry, nil
}

func (r *RosterStore) Create(entry markettypes.RosterEntry) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()
	r.store.rosters[entry.ID] = entry
	return nil
}

func (r *RosterStore) Remove(rosterEntryID string) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()
	if _, ok := r.store.rosters[rosterEntryID]; !ok {
		return fmt.Errorf("roster entry %s: %w", rosterEntryID, markettypes.ErrNotFound)
	}
	delete(r.store.rosters, rosterEntryID)
	return nil
}

func (r *RosterStore) Transfer(rosterEntryID, fromMemberID, toMemberID string) error {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()
	entry, ok := r.store.rosters[rosterEntryID]
	if !ok {
		return fmt.Errorf("roster entry %s: %w", rosterEntryID, markettypes.ErrNotFound)
	}
	if entry.MemberID != fromMemberID {
		return fmt.Errorf("roster entry %s is not owned by %s", rosterEntryID, fromMemberID)
	}
	entry.MemberID = toMemberID
	r.store.rosters[rosterEntryID] = entry
	return nil
}

func (r *RosterStore) Owner(leagueID, playerID string) (string, error) {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()
	for _, entry := range r.store.rosters {
		if entry.PlayerID != playerID {
			continue
		}
		member, ok := r.store.members[entry.MemberID]
		if ok && member.LeagueID == leagueID {
			return entry.MemberID, nil
		}
	}
	return "", nil
}

// ContractStore facet

type ContractStore struct {
	store *Store
}

func (c *ContractStore) Get(rosterEntryID string) (markettypes.Contract, error) {
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	contract, ok := c.store.contracts[rosterEntryID]
	if !ok {
		return markettypes.Contract{}, fmt.Errorf("contract for entry %s: %w", rosterEntryID, markettypes.ErrNotFound)
	}
	return contract, nil
}

func (c *ContractStore) ActiveForMember(memberID string) ([]markettypes.Contract, error) {
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	contracts := []markettypes.Contract{}
	for _, contract := range c.store.contracts {
		if contract.MemberID == memberID && contract.Active() {
			contracts = append(contracts, contract)
		}
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].RosterEntryID < contracts[j].RosterEntryID
	})
	return contracts, nil
}

func (c *ContractStore) Save(contract markettypes.Contract) error {
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	c.store.contracts[contract.RosterEntryID] = contract
	return nil
}

func (c *ContractStore) Delete(rosterEntryID string) error {
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	delete(c.store.contracts, rosterEntryID)
	return nil
}

// SessionStore facet

type SessionStore struct {
	store *Store
}

func (s *SessionStore) Get(sessionID string) (*markettypes.TurnSession, error) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()
	session, ok := s.store.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, markettypes.ErrNotFound)
	}
	return session, nil
}

func (s *SessionStore) Save(session *markettypes.TurnSession) error {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()
	s.store.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) ActiveSessionIDs() ([]string, error) {
	s.store.lock.Lock()
	defer s.store.lock.Unlock()
	ids := []string{}
	for id, session := range s.store.sessions {
		if !session.Completed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
