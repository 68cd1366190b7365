package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeAvailability struct {
	available bool
	err       error
}

func (f *fakeAvailability) AnyAgentAvailable(ctx context.Context, workspaceID uuid.UUID) (bool, error) {
	return f.available, f.err
}

var testNow = time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC)

func newTestResolver(avail *fakeAvailability) *Resolver {
	if avail == nil {
		avail = &fakeAvailability{available: true}
	}
	return NewResolverAt(avail, func() time.Time { return testNow })
}

func agedConversation(age time.Duration) ConversationInfo {
	return ConversationInfo{
		CreatedAt: testNow.Add(-age),
		UpdatedAt: testNow.Add(-age),
	}
}

func TestOutOfHoursBeatsFallback(t *testing.T) {
	r := newTestResolver(nil)
	list := []Rule{
		{ID: "5", Enabled: true, ResponseType: ResponseText, Body: "fallback"},
		{ID: "1", Enabled: true, ResponseType: ResponseText, Body: "closed"},
	}

	got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(time.Hour), false, false)
	if got == nil || got.Kind != KindOutOfHours {
		t.Fatalf("expected out-of-hours rule, got %+v", got)
	}
}

func TestOutOfHoursFiresOnHolidayMode(t *testing.T) {
	r := newTestResolver(nil)
	list := []Rule{{ID: "1", Enabled: true, ResponseType: ResponseText, Body: "closed"}}

	got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(time.Hour), true, true)
	if got == nil || got.Kind != KindOutOfHours {
		t.Fatalf("expected out-of-hours rule on holiday mode, got %+v", got)
	}
}

func TestNoAgentRule(t *testing.T) {
	list := []Rule{{ID: "2", Enabled: true, ResponseType: ResponseText, Body: "busy"}}
	conv := agedConversation(time.Hour)

	t.Run("fires when nobody available", func(t *testing.T) {
		r := newTestResolver(&fakeAvailability{available: false})
		got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true)
		if got == nil || got.Kind != KindNoAgent {
			t.Fatalf("expected no-agent rule, got %+v", got)
		}
	})

	t.Run("skipped when agent available", func(t *testing.T) {
		r := newTestResolver(&fakeAvailability{available: true})
		if got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})

	t.Run("skipped on availability error", func(t *testing.T) {
		r := newTestResolver(&fakeAvailability{err: errors.New("presence service down")})
		if got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true); got != nil {
			t.Fatalf("expected nil when availability is unknown, got %+v", got)
		}
	})

	t.Run("skipped outside working hours", func(t *testing.T) {
		r := newTestResolver(&fakeAvailability{available: false})
		if got := r.Resolve(context.Background(), uuid.New(), list, conv, false, false); got != nil {
			t.Fatalf("expected nil outside working hours, got %+v", got)
		}
	})
}

func TestWelcomeBeatsFallbackForNewConversation(t *testing.T) {
	r := newTestResolver(nil)
	list := []Rule{
		{ID: "5", Enabled: true, ResponseType: ResponseText, Body: "fallback"},
		{ID: "3", Enabled: true, ResponseType: ResponseText, Body: "welcome"},
	}

	got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(10*time.Second), false, true)
	if got == nil || got.Kind != KindWelcome {
		t.Fatalf("expected welcome rule for 10s-old conversation, got %+v", got)
	}

	// An old conversation falls through to fallback.
	got = r.Resolve(context.Background(), uuid.New(), list, agedConversation(time.Hour), false, true)
	if got == nil || got.Kind != KindFallback {
		t.Fatalf("expected fallback rule for old conversation, got %+v", got)
	}
}

func TestIdleAIRule(t *testing.T) {
	r := newTestResolver(nil)
	list := []Rule{{ID: "4", Enabled: true, ResponseType: ResponseAI, Body: "nudge", ThresholdMin: 15}}

	if got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(10*time.Minute), false, true); got != nil {
		t.Fatalf("threshold not reached yet, got %+v", got)
	}
	got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(20*time.Minute), false, true)
	if got == nil || got.Kind != KindIdleAI {
		t.Fatalf("expected idle AI rule after threshold, got %+v", got)
	}
}

func TestIdleRuleRequiresAIType(t *testing.T) {
	r := newTestResolver(nil)
	// Rule 4 configured as plain text must not fire in the priority chain,
	// but it does carry content so the fallback scan picks it up.
	list := []Rule{{ID: "4", Enabled: true, ResponseType: ResponseText, Body: "nudge", ThresholdMin: 15}}

	got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(20*time.Minute), false, true)
	if got == nil || got.ID != "4" {
		t.Fatalf("expected fallback scan to pick rule 4, got %+v", got)
	}
}

func TestDisabledRulesNeverFire(t *testing.T) {
	r := newTestResolver(&fakeAvailability{available: false})
	list := DefaultRules() // everything ships disabled

	if got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(time.Second), false, false); got != nil {
		t.Fatalf("expected nil with all rules disabled, got %+v", got)
	}
}

func TestFallbackScan(t *testing.T) {
	r := newTestResolver(nil)
	conv := agedConversation(time.Hour)

	list := []Rule{
		{ID: "7", Enabled: true, ResponseType: ResponseText},                                 // no content
		{ID: "8", Enabled: true, ResponseType: ResponseTemplate, TemplateName: "follow_up"},  // first usable
		{ID: "9", Enabled: true, ResponseType: ResponseChatbot, ChatbotID: uuid.NewString()}, // usable but later
	}

	got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true)
	if got == nil || got.ID != "8" {
		t.Fatalf("expected first rule with content (id 8), got %+v", got)
	}
}

func TestFallbackScanSkipsChainRejectedKinds(t *testing.T) {
	conv := agedConversation(time.Hour)

	t.Run("out-of-hours stays quiet during open hours", func(t *testing.T) {
		r := newTestResolver(nil)
		list := []Rule{{ID: "1", Enabled: true, ResponseType: ResponseText, Body: "closed"}}
		if got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})

	t.Run("welcome stays quiet for old conversations", func(t *testing.T) {
		r := newTestResolver(nil)
		list := []Rule{{ID: "3", Enabled: true, ResponseType: ResponseText, Body: "welcome"}}
		if got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})

	t.Run("follow-up never answers an inbound message", func(t *testing.T) {
		r := newTestResolver(nil)
		list := []Rule{{ID: "6", Enabled: true, ResponseType: ResponseText, Body: "checking in", ThresholdMin: 60}}
		if got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})

	t.Run("custom rules still reachable", func(t *testing.T) {
		r := newTestResolver(nil)
		list := []Rule{
			{ID: "2", Enabled: true, ResponseType: ResponseText, Body: "busy"},
			{ID: "8", Enabled: true, ResponseType: ResponseText, Body: "custom"},
		}
		got := r.Resolve(context.Background(), uuid.New(), list, conv, false, true)
		if got == nil || got.ID != "8" {
			t.Fatalf("expected custom rule 8, got %+v", got)
		}
	})
}

func TestFallbackScanHonorsAIThreshold(t *testing.T) {
	r := newTestResolver(nil)
	list := []Rule{
		{ID: "7", Enabled: true, ResponseType: ResponseAI, Body: "prompt", ThresholdMin: 120},
		{ID: "8", Enabled: true, ResponseType: ResponseText, Body: "plain"},
	}

	got := r.Resolve(context.Background(), uuid.New(), list, agedConversation(time.Hour), false, true)
	if got == nil || got.ID != "8" {
		t.Fatalf("expected AI rule skipped for unmet threshold, got %+v", got)
	}
}

func TestDefaultRuleVocabulary(t *testing.T) {
	defaults := DefaultRules()
	if len(defaults) != 9 {
		t.Fatalf("expected 9 default rules, got %d", len(defaults))
	}
	wantKinds := map[string]Kind{
		"1": KindOutOfHours, "2": KindNoAgent, "3": KindWelcome,
		"4": KindIdleAI, "5": KindFallback, "6": KindFollowUp,
		"7": KindCustom, "8": KindCustom, "9": KindCustom,
	}
	for _, rule := range defaults {
		if rule.Kind != wantKinds[rule.ID] {
			t.Errorf("rule %s: kind = %s, want %s", rule.ID, rule.Kind, wantKinds[rule.ID])
		}
		if rule.Kind != KindForID(rule.ID) {
			t.Errorf("rule %s: KindForID mismatch", rule.ID)
		}
	}
}
