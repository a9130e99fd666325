package watchlist

import (
	"testing"

	"github.com/pricescanner/aggregator/internal/types"
)

func identityPrice(o types.Offer) float64 { return o.Price }

func watchFor(title string, vendors ...string) types.WatchEntry {
	return types.WatchEntry{
		ID:      EntryID(title, vendors),
		Title:   title,
		Vendors: vendors,
	}
}

func TestEvaluateBaselineInitialization(t *testing.T) {
	w := watchFor("mouse", "amazon")
	offers := []types.Offer{{Title: "Wireless Mouse", Vendor: "amazon", Price: 200}}

	result := Evaluate([]types.WatchEntry{w}, offers, identityPrice)

	got := result.Watches[0]
	if got.Baseline == nil || *got.Baseline != 200 {
		t.Fatalf("Baseline = %v, want 200", got.Baseline)
	}
	if got.Last == nil || *got.Last != 200 {
		t.Errorf("Last = %v, want 200", got.Last)
	}
	if got.LastVendor != "amazon" {
		t.Errorf("LastVendor = %q, want amazon", got.LastVendor)
	}
	if !result.Changed {
		t.Error("first match must mark the pass as changed")
	}
}

func TestEvaluateBaselineSticksAtFirstMatch(t *testing.T) {
	w := watchFor("mouse", "amazon")
	first := Evaluate([]types.WatchEntry{w}, []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 200}}, identityPrice)

	// A later, higher price must not move the baseline
	second := Evaluate(first.Watches, []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 250}}, identityPrice)

	if *second.Watches[0].Baseline != 200 {
		t.Errorf("Baseline moved to %v, want 200", *second.Watches[0].Baseline)
	}
}

func TestEvaluateTargetPriceTrigger(t *testing.T) {
	tests := []struct {
		name      string
		target    float64
		offer     float64
		triggered bool
	}{
		{"Above target", 100, 120, false},
		{"Exactly at target", 100, 100, true},
		{"Below target", 100, 95, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := watchFor("mouse", "amazon")
			w.TargetPrice = types.Float64Ptr(tt.target)

			result := Evaluate([]types.WatchEntry{w}, []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: tt.offer}}, identityPrice)

			if result.Watches[0].Triggered != tt.triggered {
				t.Errorf("Triggered = %v, want %v", result.Watches[0].Triggered, tt.triggered)
			}
		})
	}
}

func TestEvaluateDiscountTrigger(t *testing.T) {
	w := watchFor("mouse", "amazon")
	w.DiscountPct = types.Float64Ptr(20)
	w.Baseline = types.Float64Ptr(200)

	// 150 against a 200 baseline is a 25% discount
	result := Evaluate([]types.WatchEntry{w}, []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 150}}, identityPrice)

	if !result.Watches[0].Triggered {
		t.Error("25%% under baseline must trigger a 20%% discount watch")
	}
	if len(result.Notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(result.Notifications))
	}
	if result.Notifications[0].Price != 150 {
		t.Errorf("notification price = %v, want 150", result.Notifications[0].Price)
	}
}

func TestEvaluateDiscountBelowThreshold(t *testing.T) {
	w := watchFor("mouse", "amazon")
	w.DiscountPct = types.Float64Ptr(20)
	w.Baseline = types.Float64Ptr(200)

	// 170 against 200 is only 15%
	result := Evaluate([]types.WatchEntry{w}, []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 170}}, identityPrice)

	if result.Watches[0].Triggered {
		t.Error("15%% discount must not trigger a 20%% watch")
	}
}

func TestEvaluateDetrigger(t *testing.T) {
	w := watchFor("mouse", "amazon")
	w.TargetPrice = types.Float64Ptr(100)
	w.Triggered = true
	w.Baseline = types.Float64Ptr(100)
	w.Last = types.Float64Ptr(95)
	w.LastVendor = "amazon"

	// Price climbed back above target
	result := Evaluate([]types.WatchEntry{w}, []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 130}}, identityPrice)

	if result.Watches[0].Triggered {
		t.Error("watch must detrigger when the condition stops holding")
	}
	if len(result.Notifications) != 0 {
		t.Error("detriggering must not notify")
	}
	if !result.Changed {
		t.Error("detrigger is a persisted-state change")
	}
}

func TestEvaluateNotificationOnlyOnTransition(t *testing.T) {
	w := watchFor("mouse", "amazon")
	w.TargetPrice = types.Float64Ptr(100)
	offers := []types.Offer{{Title: "Mouse", Vendor: "amazon", Price: 95}}

	first := Evaluate([]types.WatchEntry{w}, offers, identityPrice)
	if len(first.Notifications) != 1 {
		t.Fatalf("first pass: got %d notifications, want 1", len(first.Notifications))
	}

	// Same conditions, already triggered: no repeat notification
	second := Evaluate(first.Watches, offers, identityPrice)
	if len(second.Notifications) != 0 {
		t.Errorf("second pass: got %d notifications, want 0", len(second.Notifications))
	}
	if second.Changed {
		t.Error("identical pass must not report a change")
	}
}

func TestEvaluateNoMatchLeavesWatchUntouched(t *testing.T) {
	w := watchFor("mouse", "amazon")
	w.TargetPrice = types.Float64Ptr(100)
	w.Baseline = types.Float64Ptr(180)
	w.Last = types.Float64Ptr(170)
	w.LastVendor = "amazon"
	w.Triggered = false

	// No amazon offers at all this pass
	result := Evaluate([]types.WatchEntry{w}, []types.Offer{{Title: "Mouse", Vendor: "ebay", Price: 10}}, identityPrice)

	got := result.Watches[0]
	if *got.Baseline != 180 || *got.Last != 170 || got.LastVendor != "amazon" || got.Triggered {
		t.Errorf("no-match pass mutated the watch: %+v", got)
	}
	if result.Changed {
		t.Error("no-match pass must not report a change")
	}
}

func TestEvaluateBestMatchSelection(t *testing.T) {
	w := watchFor("mouse", "amazon", "ebay")

	offers := []types.Offer{
		{Title: "Wireless Mouse Pro", Vendor: "amazon", Price: 40},
		{Title: "Wireless Mouse", Vendor: "ebay", Price: 25},
		{Title: "Wireless Mouse", Vendor: "walmart", Price: 1}, // vendor not watched
		{Title: "USB Keyboard", Vendor: "amazon", Price: 2},    // title mismatch
	}

	result := Evaluate([]types.WatchEntry{w}, offers, identityPrice)

	got := result.Watches[0]
	if got.LastVendor != "ebay" || *got.Last != 25 {
		t.Errorf("best match = %q at %v, want ebay at 25", got.LastVendor, *got.Last)
	}
}

func TestEvaluateBatchNotificationsInInputOrder(t *testing.T) {
	w1 := watchFor("mouse", "amazon")
	w1.TargetPrice = types.Float64Ptr(100)
	w2 := watchFor("keyboard", "amazon")
	w2.TargetPrice = types.Float64Ptr(50)

	offers := []types.Offer{
		{Title: "Mouse", Vendor: "amazon", Price: 90},
		{Title: "Keyboard", Vendor: "amazon", Price: 45},
	}

	result := Evaluate([]types.WatchEntry{w1, w2}, offers, identityPrice)

	if len(result.Notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(result.Notifications))
	}
	if result.Notifications[0].WatchID != w1.ID || result.Notifications[1].WatchID != w2.ID {
		t.Errorf("notifications out of input order: %+v", result.Notifications)
	}
}

func TestEntryID(t *testing.T) {
	a := EntryID("Wireless Mouse", []string{"ebay", "amazon"})
	b := EntryID("wireless mouse", []string{"amazon", "ebay"})
	if a != b {
		t.Errorf("EntryID should be case- and order-insensitive: %q vs %q", a, b)
	}
	if a != "wireless mouse|amazon,ebay" {
		t.Errorf("EntryID = %q", a)
	}
}

func TestNewOfferWatchTargetSeed(t *testing.T) {
	w := NewOfferWatch(types.Offer{Title: "Mouse", Price: 20}, []string{"amazon"})
	if w.TargetPrice == nil || *w.TargetPrice != 19 {
		t.Errorf("TargetPrice = %v, want 19", w.TargetPrice)
	}

	// Never seeds below zero
	w = NewOfferWatch(types.Offer{Title: "Freebie", Price: 0.5}, []string{"amazon"})
	if *w.TargetPrice != 0 {
		t.Errorf("TargetPrice = %v, want clamped to 0", *w.TargetPrice)
	}
}
