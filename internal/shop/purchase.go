package shop

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/storage"
	"github.com/evolua/backend/internal/user"
)

const vipDuration = 30 * 24 * time.Hour

// Rand supplies the payment simulation's randomness. math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
}

// Result is the outcome of one payment attempt.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Purchase is a completed transaction kept in the purchase history.
type Purchase struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"itemId"`
	ItemType      ItemType  `json:"itemType"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transactionId"`
	PurchasedAt   time.Time `json:"purchasedAt"`
}

// Simulator stands in for a payment processor. Roughly one attempt in
// twenty is declined, and each attempt takes Delay to settle.
type Simulator struct {
	Rng         Rand
	Delay       time.Duration
	SuccessRate float64
}

// NewSimulator returns a simulator with the production settings: a two
// second settlement delay and a 95% approval rate.
func NewSimulator(rng Rand) *Simulator {
	return &Simulator{Rng: rng, Delay: 2 * time.Second, SuccessRate: 0.95}
}

// Process runs one payment attempt for the item. The settlement delay is
// cut short when ctx is canceled, in which case the attempt fails.
func (s *Simulator) Process(ctx context.Context, itemID string) Result {
	if _, ok := ByID(itemID); !ok {
		return Result{Error: "item not found"}
	}

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return Result{Error: "payment canceled"}
		}
	}

	if s.Rng.Float64() >= s.SuccessRate {
		return Result{Error: "payment processing failed, please try again"}
	}
	return Result{
		Success:       true,
		TransactionID: fmt.Sprintf("txn_%s", uuid.NewString()),
	}
}

// Service runs purchases end to end: payment, account effects, history,
// and notifications. A declined payment never touches the user record.
type Service struct {
	sim    *Simulator
	users  *user.Store
	repo   storage.Repository
	events *notify.Log
	log    zerolog.Logger
	now    func() time.Time
}

// NewService wires a purchase service over the given collaborators.
func NewService(sim *Simulator, users *user.Store, repo storage.Repository, events *notify.Log, logger zerolog.Logger) *Service {
	return &Service{
		sim:    sim,
		users:  users,
		repo:   repo,
		events: events,
		log:    logger,
		now:    time.Now,
	}
}

// Buy purchases the item for the current user. The returned Result
// carries the decline reason when the payment did not go through.
func (s *Service) Buy(ctx context.Context, itemID string) (Result, error) {
	item, ok := ByID(itemID)
	if !ok {
		return Result{Error: "item not found"}, fmt.Errorf("unknown item %q", itemID)
	}
	if _, found := s.users.Load(); !found {
		return Result{Error: "no user"}, fmt.Errorf("no user to purchase for")
	}

	res := s.sim.Process(ctx, itemID)
	if !res.Success {
		s.events.Add("Purchase failed", res.Error, notify.KindSystem)
		return res, nil
	}

	s.applyEffects(item)
	s.recordPurchase(ctx, item, res.TransactionID)

	s.events.Track("purchase_completed", map[string]any{
		"itemId": item.ID,
		"amount": item.DiscountedPrice(),
		"type":   string(item.Type),
	})
	s.events.Add("Purchase complete!",
		fmt.Sprintf("%s was added to your account", item.Title),
		notify.KindSystem)

	return res, nil
}

// applyEffects mutates the user record per item type. Level boosts move
// the level directly without granting XP, so a boosted level can sit
// above what the XP alone would produce.
func (s *Service) applyEffects(item Item) {
	switch item.Type {
	case TypeVIPSubscription:
		vip := true
		expires := s.now().Add(vipDuration).UTC()
		s.users.Update(user.Update{IsVIP: &vip, VIPExpiresAt: &expires})
	case TypeLevelBoost:
		u, ok := s.users.Load()
		if !ok {
			return
		}
		boost := 3
		if strings.Contains(item.ID, "small") {
			boost = 1
		}
		level := u.Level + boost
		s.users.Update(user.Update{Level: &level})
	case TypeMissionUnlock, TypePowerUp, TypeCosmetic:
		// Entitlement-only items, no user record change.
	}
}

func (s *Service) recordPurchase(ctx context.Context, item Item, txnID string) {
	history := s.History(ctx)
	history = append(history, Purchase{
		ID:            uuid.NewString(),
		ItemID:        item.ID,
		ItemType:      item.Type,
		Amount:        item.DiscountedPrice(),
		TransactionID: txnID,
		PurchasedAt:   s.now().UTC(),
	})
	data, err := json.Marshal(history)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal purchase history")
		return
	}
	if err := s.repo.Save(ctx, storage.KeyPurchases, data); err != nil {
		s.log.Error().Err(err).Msg("failed to save purchase history")
	}
}

// History returns every recorded purchase, oldest first.
func (s *Service) History(ctx context.Context) []Purchase {
	data, err := s.repo.Load(ctx, storage.KeyPurchases)
	if err != nil {
		return nil
	}
	var out []Purchase
	if err := json.Unmarshal(data, &out); err != nil {
		s.log.Warn().Err(err).Msg("discarding corrupt purchase history")
		return nil
	}
	return out
}
