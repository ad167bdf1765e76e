package shop

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/evolua/backend/internal/notify"
	"github.com/evolua/backend/internal/storage"
	"github.com/evolua/backend/internal/user"
)

// fixedRand returns a preset sequence of values.
type fixedRand struct {
	values []float64
	i      int
}

func (f *fixedRand) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func instantSim(rng Rand) *Simulator {
	s := NewSimulator(rng)
	s.Delay = 0
	return s
}

func newService(t *testing.T, rng Rand) (*Service, *user.Store) {
	t.Helper()
	repo := storage.NewMemory()
	events := notify.NewLog(repo, zerolog.Nop())
	users := user.NewStore(repo, events, zerolog.Nop())
	users.Create("Ana")
	svc := NewService(instantSim(rng), users, repo, events, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	return svc, users
}

func TestCatalog_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, item := range Catalog() {
		if seen[item.ID] {
			t.Errorf("duplicate item id %s", item.ID)
		}
		seen[item.ID] = true
		if item.Price <= 0 {
			t.Errorf("%s has non-positive price", item.ID)
		}
		if len(item.Benefits) == 0 {
			t.Errorf("%s has no benefits listed", item.ID)
		}
	}
}

func TestDiscountedPrice(t *testing.T) {
	item, _ := ByID("level_boost_medium")
	want := 19.90 * 0.85
	if got := item.DiscountedPrice(); math.Abs(got-want) > 1e-9 {
		t.Errorf("DiscountedPrice = %v, want %v", got, want)
	}
	full, _ := ByID("vip_monthly")
	if full.DiscountedPrice() != full.Price {
		t.Error("item without discount must keep its price")
	}
}

func TestLimitedTime_ExpiryFilter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, item := range LimitedTime(now) {
		if item.ID == "black_friday_bundle" {
			t.Error("expired offer must not be listed")
		}
	}
	before := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	found := false
	for _, item := range LimitedTime(before) {
		if item.ID == "black_friday_bundle" {
			found = true
		}
	}
	if !found {
		t.Error("offer must be listed before its expiry")
	}
}

func TestRecommended(t *testing.T) {
	tests := []struct {
		name              string
		level, completed  int
		wantFirst         string
		wantLen           int
	}{
		{"new user", 1, 0, "starter_bundle", 1},
		{"active user", 2, 6, "vip_trial", 1},
		{"slow progress", 3, 12, "vip_trial", 2},
		{"high level", 6, 20, "vip_trial", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommended(tt.level, tt.completed)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d (%v)", len(got), tt.wantLen, got)
			}
			if got[0].ID != tt.wantFirst {
				t.Errorf("first = %s, want %s", got[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestSimulator_SuccessAndDecline(t *testing.T) {
	sim := instantSim(&fixedRand{values: []float64{0.5}})
	res := sim.Process(context.Background(), "vip_monthly")
	if !res.Success || res.TransactionID == "" {
		t.Errorf("approved attempt = %+v", res)
	}

	sim = instantSim(&fixedRand{values: []float64{0.99}})
	res = sim.Process(context.Background(), "vip_monthly")
	if res.Success || res.Error == "" {
		t.Errorf("declined attempt = %+v", res)
	}
}

func TestSimulator_UnknownItem(t *testing.T) {
	sim := instantSim(&fixedRand{values: []float64{0.0}})
	if res := sim.Process(context.Background(), "nope"); res.Success {
		t.Error("unknown item must fail")
	}
}

func TestSimulator_CanceledContext(t *testing.T) {
	sim := NewSimulator(&fixedRand{values: []float64{0.0}})
	sim.Delay = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := sim.Process(ctx, "vip_monthly"); res.Success {
		t.Error("canceled payment must fail")
	}
}

func TestBuy_VIPSubscription(t *testing.T) {
	svc, users := newService(t, &fixedRand{values: []float64{0.1}})

	res, err := svc.Buy(context.Background(), "vip_monthly")
	if err != nil || !res.Success {
		t.Fatalf("Buy = %+v, %v", res, err)
	}
	u, _ := users.Load()
	if !u.IsVIP {
		t.Error("vip purchase must set IsVIP")
	}
	if u.VIPExpiresAt == nil {
		t.Fatal("vip purchase must set an expiry")
	}
	want := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)
	if !u.VIPExpiresAt.Equal(want) {
		t.Errorf("VIPExpiresAt = %v, want 30 days out (%v)", u.VIPExpiresAt, want)
	}
}

func TestBuy_LevelBoost(t *testing.T) {
	svc, users := newService(t, &fixedRand{values: []float64{0.1, 0.1}})

	svc.Buy(context.Background(), "level_boost_small")
	u, _ := users.Load()
	if u.Level != 2 {
		t.Errorf("level after small boost = %d, want 2", u.Level)
	}
	if u.XP != 0 {
		t.Errorf("level boost must not grant XP, got %d", u.XP)
	}

	svc.Buy(context.Background(), "level_boost_medium")
	u, _ = users.Load()
	if u.Level != 5 {
		t.Errorf("level after medium boost = %d, want 5", u.Level)
	}
}

func TestBuy_DeclineLeavesUserUntouched(t *testing.T) {
	svc, users := newService(t, &fixedRand{values: []float64{0.99}})

	res, err := svc.Buy(context.Background(), "vip_monthly")
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if res.Success {
		t.Fatal("attempt should have been declined")
	}
	u, _ := users.Load()
	if u.IsVIP || u.Level != 1 {
		t.Error("declined purchase must not change the user")
	}
	if len(svc.History(context.Background())) != 0 {
		t.Error("declined purchase must not be recorded")
	}
}

func TestBuy_RecordsHistory(t *testing.T) {
	svc, _ := newService(t, &fixedRand{values: []float64{0.1, 0.1}})

	svc.Buy(context.Background(), "xp_multiplier")
	svc.Buy(context.Background(), "streak_protection")

	hist := svc.History(context.Background())
	if len(hist) != 2 {
		t.Fatalf("history = %d entries, want 2", len(hist))
	}
	if hist[0].ItemID != "xp_multiplier" || hist[1].ItemID != "streak_protection" {
		t.Errorf("history order wrong: %+v", hist)
	}
	if hist[0].TransactionID == "" {
		t.Error("recorded purchase must carry its transaction id")
	}
}
