// Copyright (c) 2026 BVK Chaitanya

package seller

import (
	"fmt"
	"sync"
	"time"

	"github.com/bvk/flipbot/gobs"
	"github.com/bvk/flipbot/marketplace"
)

// Sale lifecycle states. A sale starts SCHEDULED right after the purchase
// confirmation and ends in exactly one of the terminal states.
const (
	StateScheduled = "SCHEDULED"
	StateListed    = "LISTED"
	StateSold      = "SOLD"
	StateCancelled = "CANCELLED"
	StateStopLoss  = "STOP-LOSS-TRIGGERED"
)

// IsTerminal reports whether the state ends the sale's lifecycle. Note that
// STOP-LOSS-TRIGGERED is not terminal: the forced liquidation listing still
// resolves to SOLD or CANCELLED.
func IsTerminal(state string) bool {
	return state == StateSold || state == StateCancelled
}

// Sale is the in-memory form of one resale lifecycle. All transitions
// happen under the lock; the persisted snapshot is taken with State().
type Sale struct {
	mu sync.Mutex

	state gobs.ScheduledSaleState

	strategy Strategy
}

func newSale(uid string, item marketplace.ItemID, game string, buyPrice, marginBps int64, strategy Strategy, now time.Time) *Sale {
	return &Sale{
		state: gobs.ScheduledSaleState{
			UID:             uid,
			ItemID:          string(item),
			Game:            game,
			BuyPrice:        buyPrice,
			TargetMarginBps: marginBps,
			Strategy:        string(strategy),
			State:           StateScheduled,
			CreatedAt:       now,
		},
		strategy: strategy,
	}
}

// loadSale rebuilds a Sale from its persisted state.
func loadSale(state *gobs.ScheduledSaleState) (*Sale, error) {
	strategy, err := ParseStrategy(state.Strategy)
	if err != nil {
		return nil, fmt.Errorf("sale %s has invalid strategy: %w", state.UID, err)
	}
	switch state.State {
	case StateScheduled, StateListed, StateSold, StateCancelled, StateStopLoss:
	default:
		return nil, fmt.Errorf("sale %s has invalid state %q", state.UID, state.State)
	}
	return &Sale{state: *state, strategy: strategy}, nil
}

func (s *Sale) UID() string {
	return s.state.UID
}

// State returns a copy of the persisted form.
func (s *Sale) State() *gobs.ScheduledSaleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	return &state
}

func (s *Sale) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.State
}

// markListed moves SCHEDULED (or re-priced LISTED) to LISTED with the new
// listing.
func (s *Sale) markListed(id marketplace.ListingID, price int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state.State {
	case StateScheduled:
		s.state.State = StateListed
	case StateListed:
		s.state.Relists++
	default:
		return fmt.Errorf("sale %s cannot be listed from state %q", s.state.UID, s.state.State)
	}
	s.state.ListingID = string(id)
	s.state.ListedPrice = price
	s.state.LastAdjustedAt = now
	s.state.Failures = 0
	return nil
}

// markSold finalizes the sale on an external confirmation. Duplicate
// confirmations are no-ops.
func (s *Sale) markSold(now time.Time) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state.State {
	case StateSold:
		return false, nil
	case StateListed, StateStopLoss:
	default:
		return false, fmt.Errorf("sale %s cannot be sold from state %q", s.state.UID, s.state.State)
	}
	s.state.State = StateSold
	s.state.LastAdjustedAt = now
	return true, nil
}

func (s *Sale) markCancelled(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if IsTerminal(s.state.State) {
		return fmt.Errorf("sale %s is already in terminal state %q", s.state.UID, s.state.State)
	}
	s.state.State = StateCancelled
	s.state.ListingID = ""
	s.state.ListedPrice = 0
	s.state.LastAdjustedAt = now
	return nil
}

// markStopLoss records the forced liquidation re-list.
func (s *Sale) markStopLoss(id marketplace.ListingID, price int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.State != StateListed {
		return fmt.Errorf("sale %s cannot enter stop-loss from state %q", s.state.UID, s.state.State)
	}
	s.state.State = StateStopLoss
	s.state.StopLoss = true
	s.state.ListingID = string(id)
	s.state.ListedPrice = price
	s.state.LastAdjustedAt = now
	return nil
}

func (s *Sale) markPartialFill(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PartialFillAt = now
}

// recordFailure counts one failed re-price attempt and returns the new
// consecutive failure count.
func (s *Sale) recordFailure() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Failures++
	return s.state.Failures
}
