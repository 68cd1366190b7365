// Package rules holds the automation rule model and the priority-ordered
// resolver that picks at most one rule for an inbound message.
package rules

// ResponseType says how a matched rule answers the customer.
type ResponseType string

const (
	ResponseText     ResponseType = "text"
	ResponseChatbot  ResponseType = "chatbot"
	ResponseAI       ResponseType = "ai"
	ResponseTemplate ResponseType = "template"
)

// Kind is the closed vocabulary of built-in rule slots. The legacy
// settings format keys rules by string ids "1".."9"; the id is mapped to
// a Kind once at load so resolution never parses ids.
type Kind string

const (
	KindOutOfHours Kind = "out_of_hours" // legacy id "1"
	KindNoAgent    Kind = "no_agent"     // legacy id "2"
	KindWelcome    Kind = "welcome"      // legacy id "3"
	KindIdleAI     Kind = "idle_ai"      // legacy id "4"
	KindFallback   Kind = "fallback"     // legacy id "5"
	KindFollowUp   Kind = "follow_up"    // legacy id "6"
	KindCustom     Kind = "custom"       // reserved / tenant-defined ids
)

// Rule is one tenant-configured automation policy. Only the fields
// relevant to ResponseType are meaningful; the rest are ignored.
type Rule struct {
	ID           string       `json:"id"`
	Kind         Kind         `json:"kind,omitempty"`
	Enabled      bool         `json:"enabled"`
	ResponseType ResponseType `json:"response_type"`
	Body         string       `json:"body,omitempty"` // static text, or the AI prompt
	MaterialID   string       `json:"material_id,omitempty"`
	ThresholdMin int          `json:"threshold_min,omitempty"`
	ChatbotID    string       `json:"chatbot_id,omitempty"`
	TemplateName string       `json:"template_name,omitempty"`
}

// KindForID maps a legacy rule id onto its Kind.
func KindForID(id string) Kind {
	switch id {
	case "1":
		return KindOutOfHours
	case "2":
		return KindNoAgent
	case "3":
		return KindWelcome
	case "4":
		return KindIdleAI
	case "5":
		return KindFallback
	case "6":
		return KindFollowUp
	default:
		return KindCustom
	}
}

// Normalize fills in Kind for rules loaded from the legacy format.
func Normalize(list []Rule) []Rule {
	for i := range list {
		if list[i].Kind == "" {
			list[i].Kind = KindForID(list[i].ID)
		}
	}
	return list
}

// HasContent reports whether the rule carries the payload its response
// type needs. Used by the fallback scan.
func (r Rule) HasContent() bool {
	switch r.ResponseType {
	case ResponseText:
		return r.Body != "" || r.MaterialID != ""
	case ResponseTemplate:
		return r.TemplateName != ""
	case ResponseChatbot:
		return r.ChatbotID != ""
	case ResponseAI:
		return r.Body != ""
	default:
		return false
	}
}

// DefaultRules returns the nine rules a workspace starts with. Slots
// 7-9 are reserved for tenant-defined rules and ship disabled.
func DefaultRules() []Rule {
	defaults := []Rule{
		{ID: "1", Kind: KindOutOfHours, Enabled: false, ResponseType: ResponseText,
			Body: "Thanks for reaching out! We're currently closed and will reply during business hours."},
		{ID: "2", Kind: KindNoAgent, Enabled: false, ResponseType: ResponseText,
			Body: "All of our agents are busy right now. We'll get back to you as soon as possible."},
		{ID: "3", Kind: KindWelcome, Enabled: false, ResponseType: ResponseText,
			Body: "Hi! Thanks for your message. How can we help you today?"},
		{ID: "4", Kind: KindIdleAI, Enabled: false, ResponseType: ResponseAI, ThresholdMin: 10,
			Body: "Write a short, friendly check-in for a customer who has been waiting on our reply."},
		{ID: "5", Kind: KindFallback, Enabled: false, ResponseType: ResponseText,
			Body: "We received your message and will respond shortly."},
		{ID: "6", Kind: KindFollowUp, Enabled: false, ResponseType: ResponseText, ThresholdMin: 1440,
			Body: "Just following up on your conversation with us. Is there anything else we can help with?"},
	}
	for _, id := range []string{"7", "8", "9"} {
		defaults = append(defaults, Rule{ID: id, Kind: KindCustom, Enabled: false, ResponseType: ResponseText})
	}
	return defaults
}
