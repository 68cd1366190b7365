package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chatandika/wa-automation-be/internal/core/dispatch"
	"github.com/chatandika/wa-automation-be/internal/core/flow"
	"github.com/chatandika/wa-automation-be/internal/core/hours"
	"github.com/chatandika/wa-automation-be/internal/core/rules"
	"github.com/chatandika/wa-automation-be/internal/core/whatsapp"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/models"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
)

// Inbound is one customer message delivered by the channel webhook.
type Inbound struct {
	From          string // customer phone
	Name          string // customer profile name
	Body          string // text body, or button title for button replies
	MessageID     string // provider message id, used for dedup
	IsButtonReply bool
	ButtonID      string // reply button id when IsButtonReply
}

// Input returns the value the flow interpreter should match against.
func (in Inbound) Input() string {
	if in.IsButtonReply && in.ButtonID != "" {
		return in.ButtonID
	}
	return in.Body
}

// WebhookService runs the full automation pipeline for each inbound
// message: active flow continuation, trigger matching, then the rule
// engine.
type WebhookService struct {
	workspaces repositories.WorkspaceRepo
	convs      repositories.ConversationRepo
	msgs       repositories.MessageRepo
	bots       repositories.ChatbotRepo
	canned     repositories.CannedResponseRepo
	team       repositories.TeamRepo
	settings   *SettingsService
	channels   ChannelResolver
	generator  dispatch.Generator
	maxSteps   int
	now        func() time.Time
}

func NewWebhookService(
	workspaces repositories.WorkspaceRepo,
	convs repositories.ConversationRepo,
	msgs repositories.MessageRepo,
	bots repositories.ChatbotRepo,
	canned repositories.CannedResponseRepo,
	team repositories.TeamRepo,
	settings *SettingsService,
	channels ChannelResolver,
	generator dispatch.Generator,
	maxSteps int,
) *WebhookService {
	return &WebhookService{
		workspaces: workspaces,
		convs:      convs,
		msgs:       msgs,
		bots:       bots,
		canned:     canned,
		team:       team,
		settings:   settings,
		channels:   channels,
		generator:  generator,
		maxSteps:   maxSteps,
		now:        time.Now,
	}
}

// HandleInbound processes one customer message end to end. Automation
// failures are absorbed; only infrastructure errors surface so the
// webhook can be retried.
func (s *WebhookService) HandleInbound(ctx context.Context, workspaceID uuid.UUID, in Inbound) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ws, err := s.workspaces.GetByID(workspaceID)
	if err != nil {
		return err
	}

	if dup, err := s.msgs.ExistsByExternalID(in.MessageID); err == nil && dup {
		log.Debug().Str("message_id", in.MessageID).Msg("duplicate webhook delivery, skipping")
		return nil
	}

	conv, _, err := s.convs.FindOrCreate(ws.ID, in.From, in.Name)
	if err != nil {
		return err
	}

	if err := s.msgs.Create(&models.Message{
		ConversationID: conv.ID,
		Direction:      "incoming",
		Sender:         "customer",
		Body:           in.Body,
		MessageType:    inboundType(in),
		ExternalID:     in.MessageID,
	}); err != nil {
		return err
	}
	defer func() {
		if err := s.convs.Touch(conv.ID); err != nil {
			log.Error().Err(err).Str("conversation_id", conv.ID.String()).Msg("failed to touch conversation")
		}
	}()

	if conv.NeedsAgent {
		// A human owns this thread; stay quiet.
		return nil
	}

	provider, err := s.channels.ProviderFor(ws)
	if err != nil {
		return err
	}

	now := s.now()

	if conv.InFlow() {
		cont, err := s.continueFlow(ctx, conv, provider, in, now)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		// Session expired; this message falls through to the rules below.
	} else if s.tryTrigger(ctx, ws, conv, provider, in, now) {
		return nil
	}

	return s.runRules(ctx, ws, conv, provider, in, now)
}

func inboundType(in Inbound) string {
	if in.IsButtonReply {
		return "interactive"
	}
	return "text"
}

// continueFlow resumes the active chatbot session. The returned bool
// says whether the message should still go through the rule engine
// (true only when the session had expired on typed input).
func (s *WebhookService) continueFlow(ctx context.Context, conv *models.Conversation, provider whatsapp.Provider, in Inbound, now time.Time) (bool, error) {
	bot, err := s.bots.GetByID(*conv.ChatbotID)
	if err != nil {
		log.Warn().Err(err).Str("chatbot_id", conv.ChatbotID.String()).Msg("session chatbot missing, clearing flow")
		conv.ClearFlow()
		return true, s.convs.Update(conv)
	}

	graph, err := flow.ParseGraph(bot.Graph)
	if err != nil {
		log.Error().Err(err).Str("chatbot_id", bot.ID.String()).Msg("stored graph is invalid, handing off")
		conv.ClearFlow()
		conv.NeedsAgent = true
		return false, s.convs.Update(conv)
	}

	interp := flow.NewInterpreter(newProviderEmitter(provider, s.msgs, conv.ID), s.maxSteps)
	result := interp.Resume(ctx, graph, conv.CurrentNode, in.Input(), in.IsButtonReply, conv.FlowExpired(now), conv.CustomerPhone)

	if result.Expired {
		conv.ClearFlow()
		return true, s.convs.Update(conv)
	}
	return false, s.applyFlowResult(conv, bot, result, now)
}

// tryTrigger starts a chatbot when the message matches a trigger
// phrase. Button replies never start flows.
func (s *WebhookService) tryTrigger(ctx context.Context, ws *models.Workspace, conv *models.Conversation, provider whatsapp.Provider, in Inbound, now time.Time) bool {
	if in.IsButtonReply || in.Body == "" {
		return false
	}

	bots, err := s.bots.ListEnabled(ws.ID)
	if err != nil {
		log.Error().Err(err).Str("workspace_id", ws.ID.String()).Msg("failed to list chatbots")
		return false
	}

	for i := range bots {
		if !flow.MatchTrigger(bots[i].Trigger, in.Body) {
			continue
		}
		if err := s.startFlow(ctx, conv, &bots[i], provider, now); err != nil {
			log.Error().Err(err).Str("chatbot_id", bots[i].ID.String()).Msg("failed to start chatbot")
		}
		return true
	}
	return false
}

func (s *WebhookService) startFlow(ctx context.Context, conv *models.Conversation, bot *models.Chatbot, provider whatsapp.Provider, now time.Time) error {
	graph, err := flow.ParseGraph(bot.Graph)
	if err != nil {
		log.Error().Err(err).Str("chatbot_id", bot.ID.String()).Msg("stored graph is invalid")
		return err
	}

	interp := flow.NewInterpreter(newProviderEmitter(provider, s.msgs, conv.ID), s.maxSteps)
	result := interp.Start(ctx, graph, conv.CustomerPhone)
	return s.applyFlowResult(conv, bot, result, now)
}

// applyFlowResult persists the session state a traversal step left
// behind.
func (s *WebhookService) applyFlowResult(conv *models.Conversation, bot *models.Chatbot, result flow.StepResult, now time.Time) error {
	switch {
	case result.NoMatch:
		// Selection didn't resolve; state stays as is.
		return nil

	case result.Ended:
		conv.ClearFlow()
		if result.Handoff {
			conv.NeedsAgent = true
			conv.Status = "pending"
		}
		return s.convs.Update(conv)

	case result.CurrentNode != "":
		botID := bot.ID
		conv.ChatbotID = &botID
		conv.CurrentNode = result.CurrentNode
		expiry := now.Add(bot.Timeout())
		conv.ChatbotExpiry = &expiry
		return s.convs.Update(conv)

	default:
		return nil
	}
}

// runRules evaluates the automation rules for a message that no flow
// consumed.
func (s *WebhookService) runRules(ctx context.Context, ws *models.Workspace, conv *models.Conversation, provider whatsapp.Provider, in Inbound, now time.Time) error {
	setting, err := s.settings.Get(ws.ID)
	if err != nil {
		return err
	}
	days, err := s.settings.Schedule(setting)
	if err != nil {
		return err
	}
	list, err := s.settings.Rules(setting)
	if err != nil {
		return err
	}

	isWorking := hours.IsWorkingHoursAt(false, days, now)

	resolver := rules.NewResolverAt(&teamAvailability{repo: s.team}, func() time.Time { return now })
	rule := resolver.Resolve(ctx, ws.ID, list,
		rules.ConversationInfo{CreatedAt: conv.CreatedAt, UpdatedAt: conv.UpdatedAt},
		setting.HolidayMode, isWorking)
	if rule == nil {
		return nil
	}

	dispatcher := dispatch.NewDispatcher(
		&cannedStore{repo: s.canned},
		&providerSender{provider: provider, language: "en"},
		s.generator,
		&botRecorder{repo: s.msgs},
	)

	outcome, err := dispatcher.Dispatch(ctx, rule, conv.ID.String(), conv.CustomerPhone)
	if err != nil {
		return err
	}

	if outcome.Kind == dispatch.OutcomeChatbot {
		botID, err := uuid.Parse(outcome.ChatbotID)
		if err != nil {
			log.Warn().Str("chatbot_id", outcome.ChatbotID).Msg("rule references invalid chatbot id")
			return nil
		}
		bot, err := s.bots.GetByID(botID)
		if err != nil {
			log.Warn().Err(err).Str("chatbot_id", outcome.ChatbotID).Msg("rule references missing chatbot")
			return nil
		}
		return s.startFlow(ctx, conv, bot, provider, now)
	}

	return nil
}
