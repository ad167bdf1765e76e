// Package shop holds the in-app store: the item catalog, the simulated
// payment flow, and the account effects a successful purchase applies.
package shop

import (
	"fmt"
	"time"
)

// ItemType determines which account effect a purchase applies.
type ItemType string

const (
	TypeVIPSubscription ItemType = "vip_subscription"
	TypeMissionUnlock   ItemType = "mission_unlock"
	TypeLevelBoost      ItemType = "level_boost"
	TypePowerUp         ItemType = "power_up"
	TypeCosmetic        ItemType = "cosmetic"
)

// Item is one purchasable entry in the store.
type Item struct {
	ID          string     `json:"id"`
	Type        ItemType   `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Currency    string     `json:"currency"`
	Discount    int        `json:"discount,omitempty"` // percent off
	Popular     bool       `json:"isPopular,omitempty"`
	LimitedTime bool       `json:"isLimitedTime,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Benefits    []string   `json:"benefits"`
	Category    string     `json:"category"`
}

// DiscountedPrice returns the price after the item's percent discount.
func (i Item) DiscountedPrice() float64 {
	if i.Discount == 0 {
		return i.Price
	}
	return i.Price * (1 - float64(i.Discount)/100)
}

// FormatPrice renders a price in the item's currency.
func FormatPrice(price float64, currency string) string {
	if currency == "BRL" {
		return fmt.Sprintf("R$ %.2f", price)
	}
	return fmt.Sprintf("$%.2f", price)
}

var blackFridayEnd = time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

var catalog = []Item{
	{
		ID: "vip_monthly", Type: TypeVIPSubscription,
		Title:       "EvoluaAI VIP",
		Description: "Full access to every premium feature",
		Price:       29.90, Currency: "BRL", Popular: true,
		Benefits: []string{
			"All missions unlocked",
			"Advanced coaching with deep analysis",
			"2x XP on every mission",
			"Personalized reports",
			"Priority support",
			"Early access to new features",
			"No ads",
		},
		Category: "subscription",
	},
	{
		ID: "vip_trial", Type: TypeVIPSubscription,
		Title:       "VIP Trial, 7 days",
		Description: "Try every premium feature for a week",
		Price:       1.00, Currency: "BRL", Discount: 97, LimitedTime: true,
		Benefits: []string{
			"Full access for 7 days",
			"All premium missions",
			"Advanced coaching",
			"Detailed reports",
			"Cancel anytime",
		},
		Category: "trial",
	},
	{
		ID: "unlock_productivity_advanced", Type: TypeMissionUnlock,
		Title:       "Advanced Productivity Pack",
		Description: "Unlock 5 premium productivity missions",
		Price:       12.90, Currency: "BRL",
		Benefits: []string{
			"Deep goal analysis",
			"Personalized GTD system",
			"Personal energy optimization",
			"Routine automation",
			"Strategic planning",
		},
		Category: "productivity",
	},
	{
		ID: "unlock_single_mission", Type: TypeMissionUnlock,
		Title:       "Single Unlock",
		Description: "Unlock any one premium mission",
		Price:       4.90, Currency: "BRL",
		Benefits: []string{
			"Permanent access to the mission",
			"Advanced coaching for it",
			"Detailed report",
			"Personalized tips",
		},
		Category: "individual",
	},
	{
		ID: "level_boost_small", Type: TypeLevelBoost,
		Title:       "Level Boost (+1)",
		Description: "Advance 1 level instantly",
		Price:       7.90, Currency: "BRL",
		Benefits: []string{
			"+1 level immediately",
			"Unlock new missions",
			"Access next-level features",
		},
		Category: "boost",
	},
	{
		ID: "level_boost_medium", Type: TypeLevelBoost,
		Title:       "Level Boost (+3)",
		Description: "Advance 3 levels instantly",
		Price:       19.90, Currency: "BRL", Discount: 15,
		Benefits: []string{
			"+3 levels immediately",
			"Unlock multiple missions",
			"Fast access to advanced features",
		},
		Category: "boost",
	},
	{
		ID: "xp_multiplier", Type: TypePowerUp,
		Title:       "XP Multiplier (24h)",
		Description: "2x XP on every mission for 24 hours",
		Price:       3.90, Currency: "BRL",
		Benefits: []string{
			"Doubles XP for 24 hours",
			"Applies to every mission",
			"Speeds up progression",
		},
		Category: "powerup",
	},
	{
		ID: "streak_protection", Type: TypePowerUp,
		Title:       "Streak Protection",
		Description: "Protects your streak for 3 days if you forget",
		Price:       2.90, Currency: "BRL",
		Benefits: []string{
			"Keeps the streak for 3 days",
			"Automatic protection",
			"Peace of mind",
		},
		Category: "powerup",
	},
	{
		ID: "avatar_premium_pack", Type: TypeCosmetic,
		Title:       "Premium Avatar Pack",
		Description: "Exclusive collection of custom avatars",
		Price:       8.90, Currency: "BRL",
		Benefits: []string{
			"10 exclusive avatars",
			"Unique designs",
			"Show your style",
			"Collectible",
		},
		Category: "cosmetic",
	},
	{
		ID: "badge_collector", Type: TypeCosmetic,
		Title:       "Rare Badge Collection",
		Description: "Exclusive badges to show off your achievements",
		Price:       5.90, Currency: "BRL",
		Benefits: []string{
			"5 rare badges",
			"Exclusive designs",
			"Distinct status",
			"Collectible",
		},
		Category: "cosmetic",
	},
	{
		ID: "starter_bundle", Type: TypeMissionUnlock,
		Title:       "Starter Bundle",
		Description: "Everything you need to start strong",
		Price:       24.90, Currency: "BRL", Discount: 30, Popular: true,
		Benefits: []string{
			"3 premium missions unlocked",
			"1 level boost",
			"XP multiplier for 48h",
			"Basic avatar pack",
			"Streak protection",
		},
		Category: "bundle",
	},
	{
		ID: "professional_bundle", Type: TypeMissionUnlock,
		Title:       "Professional Bundle",
		Description: "For maximizing productivity and growth",
		Price:       79.90, Currency: "BRL", Discount: 40,
		Benefits: []string{
			"All productivity missions",
			"Career coaching",
			"Advanced reports",
			"Tool integrations",
			"Priority support",
			"30 days of VIP included",
		},
		Category: "bundle",
	},
	{
		ID: "black_friday_bundle", Type: TypeMissionUnlock,
		Title:       "Black Friday Offer",
		Description: "Complete bundle at a special discount",
		Price:       49.90, Currency: "BRL", Discount: 70,
		LimitedTime: true, ExpiresAt: &blackFridayEnd,
		Benefits: []string{
			"VIP access for 3 months",
			"All missions unlocked",
			"Complete cosmetic pack",
			"Premium reports",
			"VIP support",
		},
		Category: "special",
	},
}

// Catalog returns every store item in display order.
func Catalog() []Item {
	out := make([]Item, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up an item.
func ByID(id string) (Item, bool) {
	for _, i := range catalog {
		if i.ID == id {
			return i, true
		}
	}
	return Item{}, false
}

// ByCategory returns every item in the store category.
func ByCategory(category string) []Item {
	var out []Item
	for _, i := range catalog {
		if i.Category == category {
			out = append(out, i)
		}
	}
	return out
}

// Popular returns the items flagged as popular.
func Popular() []Item {
	var out []Item
	for _, i := range catalog {
		if i.Popular {
			out = append(out, i)
		}
	}
	return out
}

// LimitedTime returns the limited-time offers still valid at now.
func LimitedTime(now time.Time) []Item {
	var out []Item
	for _, i := range catalog {
		if !i.LimitedTime {
			continue
		}
		if i.ExpiresAt != nil && !i.ExpiresAt.After(now) {
			continue
		}
		out = append(out, i)
	}
	return out
}

const maxRecommendations = 3

// Recommended picks up to three items keyed off how far along the user
// is.
func Recommended(userLevel, completedMissions int) []Item {
	var out []Item
	add := func(id string) {
		if len(out) >= maxRecommendations {
			return
		}
		if item, ok := ByID(id); ok {
			out = append(out, item)
		}
	}

	if completedMissions >= 5 {
		add("vip_trial")
	}
	if userLevel < 5 && completedMissions >= 10 {
		add("level_boost_small")
	}
	if userLevel >= 5 {
		add("unlock_productivity_advanced")
	}
	if completedMissions < 3 {
		add("starter_bundle")
	}
	return out
}
