package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chatandika/wa-automation-be/internal/core/dispatch"
	"github.com/chatandika/wa-automation-be/internal/core/rules"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
)

// FollowUpService sweeps idle conversations and sends the follow-up
// rule's message once per conversation. It runs on a cron schedule.
type FollowUpService struct {
	workspaces repositories.WorkspaceRepo
	convs      repositories.ConversationRepo
	msgs       repositories.MessageRepo
	canned     repositories.CannedResponseRepo
	settings   *SettingsService
	channels   ChannelResolver
	generator  dispatch.Generator
	now        func() time.Time
}

func NewFollowUpService(
	workspaces repositories.WorkspaceRepo,
	convs repositories.ConversationRepo,
	msgs repositories.MessageRepo,
	canned repositories.CannedResponseRepo,
	settings *SettingsService,
	channels ChannelResolver,
	generator dispatch.Generator,
) *FollowUpService {
	return &FollowUpService{
		workspaces: workspaces,
		convs:      convs,
		msgs:       msgs,
		canned:     canned,
		settings:   settings,
		channels:   channels,
		generator:  generator,
		now:        time.Now,
	}
}

// Run performs one sweep across all workspaces.
func (s *FollowUpService) Run(ctx context.Context) {
	workspaces, err := s.workspaces.ListAll()
	if err != nil {
		log.Error().Err(err).Msg("follow-up sweep failed to list workspaces")
		return
	}

	for i := range workspaces {
		if err := s.sweepWorkspace(ctx, &workspaces[i]); err != nil {
			log.Error().Err(err).Str("workspace_id", workspaces[i].ID.String()).
				Msg("follow-up sweep failed for workspace")
		}
	}
}

func (s *FollowUpService) sweepWorkspace(ctx context.Context, ws *models.Workspace) error {
	setting, err := s.settings.Get(ws.ID)
	if err != nil {
		return err
	}
	list, err := s.settings.Rules(setting)
	if err != nil {
		return err
	}

	rule := followUpRule(list)
	if rule == nil {
		return nil
	}

	thresholdMin := rule.ThresholdMin
	if thresholdMin <= 0 {
		thresholdMin = 1440 // one day
	}
	cutoff := s.now().Add(-time.Duration(thresholdMin) * time.Minute)

	idle, err := s.convs.IdleSince(ws.ID, cutoff)
	if err != nil {
		return err
	}
	if len(idle) == 0 {
		return nil
	}

	provider, err := s.channels.ProviderFor(ws)
	if err != nil {
		return err
	}

	dispatcher := dispatch.NewDispatcher(
		&cannedStore{repo: s.canned},
		&providerSender{provider: provider, language: "en"},
		s.generator,
		&botRecorder{repo: s.msgs},
	)

	for i := range idle {
		conv := &idle[i]
		if conv.NeedsAgent || conv.InFlow() {
			continue
		}

		outcome, err := dispatcher.Dispatch(ctx, rule, conv.ID.String(), conv.CustomerPhone)
		if err != nil {
			log.Error().Err(err).Str("conversation_id", conv.ID.String()).Msg("follow-up dispatch failed")
			continue
		}
		if outcome.Kind != dispatch.OutcomeSent {
			continue
		}
		if err := s.convs.MarkFollowedUp(conv.ID, s.now()); err != nil {
			log.Error().Err(err).Str("conversation_id", conv.ID.String()).Msg("failed to mark follow-up")
		}
	}
	return nil
}

// followUpRule finds the enabled follow-up rule with usable content.
// Chatbot-type rules are ignored: the sweep has no inbound message to
// anchor a flow session, so dispatching one would never complete.
func followUpRule(list []rules.Rule) *rules.Rule {
	for i := range list {
		rule := &list[i]
		if rule.Kind != rules.KindFollowUp || !rule.Enabled || !rule.HasContent() {
			continue
		}
		if rule.ResponseType == rules.ResponseChatbot {
			log.Warn().Str("rule_id", rule.ID).Msg("follow-up rule is chatbot-typed, skipping sweep")
			continue
		}
		return rule
	}
	return nil
}
