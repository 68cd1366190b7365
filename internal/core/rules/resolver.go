package rules

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// welcomeWindow is how long a conversation counts as "new" for the
// welcome rule.
const welcomeWindow = 5 * time.Minute

// AvailabilityChecker answers whether any human agent can take the
// conversation right now.
type AvailabilityChecker interface {
	AnyAgentAvailable(ctx context.Context, workspaceID uuid.UUID) (bool, error)
}

// ConversationInfo is the slice of conversation state the resolver needs.
type ConversationInfo struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resolver selects at most one applicable rule per inbound message.
type Resolver struct {
	availability AvailabilityChecker
	now          func() time.Time
}

func NewResolver(availability AvailabilityChecker) *Resolver {
	return &Resolver{availability: availability, now: time.Now}
}

// NewResolverAt builds a resolver with a fixed clock, for tests.
func NewResolverAt(availability AvailabilityChecker, now func() time.Time) *Resolver {
	return &Resolver{availability: availability, now: now}
}

// Resolve walks the fixed priority order and returns the first
// applicable rule, or nil when nothing fires. The order is by Kind, not
// by position in the slice.
func (r *Resolver) Resolve(ctx context.Context, workspaceID uuid.UUID, list []Rule, conv ConversationInfo, holidayMode, isWorking bool) *Rule {
	list = Normalize(list)
	byKind := make(map[Kind]*Rule, len(list))
	for i := range list {
		if _, ok := byKind[list[i].Kind]; !ok {
			byKind[list[i].Kind] = &list[i]
		}
	}

	now := r.now()

	if rule := byKind[KindOutOfHours]; rule != nil && rule.Enabled {
		if !isWorking || holidayMode {
			return rule
		}
	}

	if rule := byKind[KindNoAgent]; rule != nil && rule.Enabled && isWorking && !holidayMode {
		available, err := r.availability.AnyAgentAvailable(ctx, workspaceID)
		if err != nil {
			// Can't tell whether an agent is around; skip rather than guess.
			log.Warn().Err(err).Str("workspace_id", workspaceID.String()).
				Msg("agent availability check failed, skipping no-agent rule")
		} else if !available {
			return rule
		}
	}

	if rule := byKind[KindWelcome]; rule != nil && rule.Enabled {
		if now.Sub(conv.CreatedAt) < welcomeWindow {
			return rule
		}
	}

	if rule := byKind[KindIdleAI]; rule != nil && rule.Enabled &&
		rule.ResponseType == ResponseAI && rule.ThresholdMin > 0 {
		if now.Sub(conv.UpdatedAt) >= time.Duration(rule.ThresholdMin)*time.Minute {
			return rule
		}
	}

	if rule := byKind[KindFallback]; rule != nil && rule.Enabled && rule.HasContent() {
		return rule
	}

	// Nothing in the priority chain fired; scan the remaining rules in
	// natural order and take the first with usable content. Kinds the
	// chain already judged stay rejected here, otherwise the scan would
	// undo their conditions (rule 2 firing while an agent is around, rule
	// 1 firing during open hours). The follow-up rule belongs to the cron
	// sweep, never to an inbound message.
	for i := range list {
		rule := &list[i]
		if !rule.Enabled || !rule.HasContent() {
			continue
		}
		switch rule.Kind {
		case KindOutOfHours, KindNoAgent, KindWelcome, KindFallback, KindFollowUp:
			continue
		case KindIdleAI:
			// Only excluded when configured the way the chain evaluates
			// it; a mistyped idle rule is just a content-bearing rule.
			if rule.ResponseType == ResponseAI && rule.ThresholdMin > 0 {
				continue
			}
		}
		if rule.ResponseType == ResponseAI && rule.ThresholdMin > 0 &&
			now.Sub(conv.UpdatedAt) < time.Duration(rule.ThresholdMin)*time.Minute {
			continue
		}
		return rule
	}

	return nil
}
