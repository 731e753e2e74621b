package markettypes

// Clone returns a deep copy of the session so readers can serialize it
// outside the session lock.
func (s *TurnSession) Clone() *TurnSession {
	if s == nil {
		return nil
	}
	out := *s
	out.TurnOrder = append([]string(nil), s.TurnOrder...)
	out.PassedMembers = s.PassedMembers.clone()
	out.FinishedMembers = s.FinishedMembers.clone()
	out.PendingNomination = s.PendingNomination.clone()
	out.CurrentAuction = s.CurrentAuction.clone()
	out.PendingResult = s.PendingResult.clone()
	out.Rubata = s.Rubata.clone()
	return &out
}

func (s MemberSet) clone() MemberSet {
	if s == nil {
		return nil
	}
	out := make(MemberSet, len(s))
	for id := range s {
		out.Add(id)
	}
	return out
}

func (n *Nomination) clone() *Nomination {
	if n == nil {
		return nil
	}
	out := *n
	out.ReadyMembers = n.ReadyMembers.clone()
	return &out
}

func (a *Auction) clone() *Auction {
	if a == nil {
		return nil
	}
	out := *a
	out.Bids = append([]Bid(nil), a.Bids...)
	return &out
}

func (r *AuctionResult) clone() *AuctionResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Acks = r.Acks.clone()
	if r.Prophecies != nil {
		out.Prophecies = make(map[string]string, len(r.Prophecies))
		for k, v := range r.Prophecies {
			out.Prophecies[k] = v
		}
	}
	return &out
}

func (r *RubataSession) clone() *RubataSession {
	if r == nil {
		return nil
	}
	out := *r
	out.Board = append([]RubataBoardEntry(nil), r.Board...)
	out.ReadyMembers = r.ReadyMembers.clone()
	if r.TimerStartedAt != nil {
		t := *r.TimerStartedAt
		out.TimerStartedAt = &t
	}
	if r.TimerExpiresAt != nil {
		t := *r.TimerExpiresAt
		out.TimerExpiresAt = &t
	}
	if r.FrozenRemaining != nil {
		d := *r.FrozenRemaining
		out.FrozenRemaining = &d
	}
	out.Auction = r.Auction.clone()
	out.PendingResult = r.PendingResult.clone()
	return &out
}
