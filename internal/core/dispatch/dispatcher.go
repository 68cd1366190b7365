// Package dispatch turns a resolved automation rule into an outbound
// action: a sent message, a chatbot handoff, or nothing.
package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/chatandika/wa-automation-be/internal/core/rules"
)

// OutcomeKind classifies what the dispatcher did.
type OutcomeKind string

const (
	OutcomeSent        OutcomeKind = "sent"
	OutcomeNothingSent OutcomeKind = "nothing_sent"
	OutcomeChatbot     OutcomeKind = "chatbot_handoff"
)

// Outcome reports the result of dispatching one rule. Callers start a
// chatbot flow themselves when Kind is OutcomeChatbot.
type Outcome struct {
	Kind      OutcomeKind
	Text      string // body that was sent, when Kind is OutcomeSent
	Fallback  bool   // a template rule degraded to plain text
	ChatbotID string
}

// MaterialStore resolves stored reply materials referenced by id.
type MaterialStore interface {
	GetBody(ctx context.Context, materialID string) (string, error)
}

// Sender delivers outbound messages to the customer's channel.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
	SendTemplate(ctx context.Context, to, templateName string) error
}

// Generator produces an AI reply from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MessageRecorder persists one outbound message record per send.
type MessageRecorder interface {
	RecordBotMessage(ctx context.Context, conversationID, body string) error
}

// Dispatcher executes resolved rules. Send and persistence failures are
// logged and absorbed here; a broken rule must never fail the webhook.
type Dispatcher struct {
	materials MaterialStore
	sender    Sender
	generator Generator
	recorder  MessageRecorder
}

func NewDispatcher(materials MaterialStore, sender Sender, generator Generator, recorder MessageRecorder) *Dispatcher {
	return &Dispatcher{materials: materials, sender: sender, generator: generator, recorder: recorder}
}

// Dispatch executes one rule against a conversation and reports what
// happened. It never returns an error for content problems; only a nil
// rule is a programming error.
func (d *Dispatcher) Dispatch(ctx context.Context, rule *rules.Rule, conversationID, to string) (Outcome, error) {
	if rule == nil {
		return Outcome{}, fmt.Errorf("dispatch called with nil rule")
	}

	switch rule.ResponseType {
	case rules.ResponseText:
		body, ok := d.textBody(ctx, rule)
		if !ok {
			return Outcome{Kind: OutcomeNothingSent}, nil
		}
		return d.deliver(ctx, conversationID, to, body, false), nil

	case rules.ResponseChatbot:
		if rule.ChatbotID == "" {
			return Outcome{Kind: OutcomeNothingSent}, nil
		}
		return Outcome{Kind: OutcomeChatbot, ChatbotID: rule.ChatbotID}, nil

	case rules.ResponseAI:
		if rule.Body == "" {
			return Outcome{Kind: OutcomeNothingSent}, nil
		}
		body, err := d.generator.Generate(ctx, rule.Body)
		if err != nil || body == "" {
			// Degrade to the configured prompt text so the customer still
			// gets an answer.
			log.Warn().Err(err).Str("rule_id", rule.ID).Msg("AI generation failed, sending prompt body verbatim")
			body = rule.Body
		}
		return d.deliver(ctx, conversationID, to, body, false), nil

	case rules.ResponseTemplate:
		if rule.TemplateName == "" {
			return Outcome{Kind: OutcomeNothingSent}, nil
		}
		if err := d.sender.SendTemplate(ctx, to, rule.TemplateName); err != nil {
			log.Warn().Err(err).Str("template", rule.TemplateName).Msg("template send failed, falling back to text")
			if rule.Body == "" {
				return Outcome{Kind: OutcomeNothingSent}, nil
			}
			return d.deliver(ctx, conversationID, to, rule.Body, true), nil
		}
		d.record(ctx, conversationID, "[template] "+rule.TemplateName)
		return Outcome{Kind: OutcomeSent, Text: rule.TemplateName}, nil

	default:
		log.Warn().Str("rule_id", rule.ID).Str("response_type", string(rule.ResponseType)).
			Msg("unknown response type, nothing sent")
		return Outcome{Kind: OutcomeNothingSent}, nil
	}
}

// textBody resolves the static body for a text rule. MaterialID wins
// over the inline body when both are set.
func (d *Dispatcher) textBody(ctx context.Context, rule *rules.Rule) (string, bool) {
	if rule.MaterialID != "" {
		body, err := d.materials.GetBody(ctx, rule.MaterialID)
		if err == nil && body != "" {
			return body, true
		}
		log.Warn().Err(err).Str("material_id", rule.MaterialID).Msg("material lookup failed")
	}
	if rule.Body != "" {
		return rule.Body, true
	}
	return "", false
}

func (d *Dispatcher) deliver(ctx context.Context, conversationID, to, body string, fallback bool) Outcome {
	if err := d.sender.SendText(ctx, to, body); err != nil {
		log.Error().Err(err).Str("to", to).Msg("outbound send failed")
		return Outcome{Kind: OutcomeNothingSent}
	}
	d.record(ctx, conversationID, body)
	return Outcome{Kind: OutcomeSent, Text: body, Fallback: fallback}
}

func (d *Dispatcher) record(ctx context.Context, conversationID, body string) {
	if err := d.recorder.RecordBotMessage(ctx, conversationID, body); err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to record bot message")
	}
}
