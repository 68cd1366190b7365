package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Button is one interactive reply button shown to the customer. ID is
// echoed back verbatim in the button_reply webhook payload.
type Button struct {
	ID    string
	Title string
}

// Emitter delivers the messages a traversal produces. One interpreter
// step may emit several messages (a cascade of non-waiting nodes).
type Emitter interface {
	SendText(ctx context.Context, to, body string) error
	SendMedia(ctx context.Context, to, link, fileType, caption string) error
	SendButtons(ctx context.Context, to, body string, buttons []Button) error
	SendLocation(ctx context.Context, to string, loc Location) error
	SendCTA(ctx context.Context, to, body string, cta CTAButton) error
	CallAPI(ctx context.Context, call APICall) error
}

// StepResult is what one Start or Resume call produced. Exactly one of
// the waiting (CurrentNode != ""), Ended, NoMatch, or Expired states
// describes where the conversation stands afterwards.
type StepResult struct {
	CurrentNode string // node now awaiting customer input; empty if not waiting
	Ended       bool   // flow finished, state should be cleared
	Handoff     bool   // conversation should be routed to a human
	NoMatch     bool   // input did not select anything; state unchanged
	Expired     bool   // session timed out; caller clears state and falls through
	Messages    int    // messages emitted during this step
}

// Interpreter walks chatbot graphs. It holds no per-conversation state;
// callers persist CurrentNode between steps.
type Interpreter struct {
	emitter  Emitter
	maxSteps int
}

// DefaultMaxSteps bounds a single cascade so a cyclic graph cannot spin
// the webhook handler forever.
const DefaultMaxSteps = 50

func NewInterpreter(emitter Emitter, maxSteps int) *Interpreter {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Interpreter{emitter: emitter, maxSteps: maxSteps}
}

// Start begins a traversal from the graph entry and cascades until a
// node waits for input or the flow ends.
func (it *Interpreter) Start(ctx context.Context, g Graph, to string) StepResult {
	start, ok := g[StartKey]
	if !ok {
		log.Error().Msg("chatbot graph has no start node")
		return StepResult{Ended: true, Handoff: true}
	}
	first := start.Next
	if start.Type != StartNode {
		// Some builders store the first real node directly under "start".
		return it.cascade(ctx, g, StartKey, to)
	}
	if first == "" {
		return StepResult{Ended: true}
	}
	return it.cascade(ctx, g, first, to)
}

// Resume continues a traversal at the node recorded for the
// conversation, interpreting the customer's input against it.
//
// expired says the session is past its inactivity deadline. A button
// reply still resolves after expiry, because the customer is tapping a
// message that is already on their screen; typed input after expiry
// instead reports Expired so the caller can clear the session.
func (it *Interpreter) Resume(ctx context.Context, g Graph, currentNodeID, input string, isButtonReply, expired bool, to string) StepResult {
	node, ok := g[currentNodeID]
	if !ok {
		log.Warn().Str("node_id", currentNodeID).Msg("session points at a node missing from the graph")
		return StepResult{Ended: true, Handoff: true}
	}

	switch node.Type {
	case ButtonMenu:
		if child, ok := findChildByID(node, input); ok {
			return it.follow(ctx, g, child.Next, to)
		}
		if expired {
			return StepResult{Expired: true}
		}
		// Typed input matches by index or label, same as an option menu.
		// The menu may have been rendered as a numbered list when the
		// channel cannot deliver interactive buttons.
		if !isButtonReply {
			if child, ok := selectOption(node, input); ok {
				return it.follow(ctx, g, child.Next, to)
			}
		}
		return StepResult{CurrentNode: currentNodeID, NoMatch: true}

	case OptionMenu:
		if expired {
			return StepResult{Expired: true}
		}
		if child, ok := selectOption(node, input); ok {
			return it.follow(ctx, g, child.Next, to)
		}
		return StepResult{CurrentNode: currentNodeID, NoMatch: true}

	default:
		// A message node that asked for a free-text answer.
		if expired {
			return StepResult{Expired: true}
		}
		return it.follow(ctx, g, node.Next, to)
	}
}

// follow resumes the cascade after a selection. An empty target ends
// the flow.
func (it *Interpreter) follow(ctx context.Context, g Graph, nextID, to string) StepResult {
	if nextID == "" {
		return StepResult{Ended: true}
	}
	return it.cascade(ctx, g, nextID, to)
}

// cascade emits nodes starting at id until one waits for input, the
// flow ends, or the step bound is hit.
func (it *Interpreter) cascade(ctx context.Context, g Graph, id, to string) StepResult {
	var result StepResult

	for steps := 0; ; steps++ {
		if steps >= it.maxSteps {
			log.Warn().Str("node_id", id).Int("max_steps", it.maxSteps).
				Msg("chatbot cascade exceeded step bound, handing off")
			result.Ended = true
			result.Handoff = true
			return result
		}

		node, ok := g[id]
		if !ok {
			log.Warn().Str("node_id", id).Msg("chatbot graph references missing node, handing off")
			result.Ended = true
			result.Handoff = true
			return result
		}

		switch node.Type {
		case StartNode:
			// Re-entering start mid-graph; just pass through.

		case ChatWithAgent:
			if node.Message != "" {
				it.emitText(ctx, to, node.Message, &result)
			}
			result.Ended = true
			result.Handoff = true
			return result

		case OptionMenu:
			it.emitOptionMenu(ctx, to, node, &result)
			result.CurrentNode = id
			return result

		case ButtonMenu:
			it.emitButtonMenu(ctx, to, node, &result)
			result.CurrentNode = id
			return result

		default:
			it.emitMessage(ctx, to, node, &result)
			if node.NeedResponse {
				result.CurrentNode = id
				return result
			}
		}

		if node.Next == "" {
			result.Ended = true
			return result
		}
		id = node.Next
	}
}

// emitMessage sends a plain message node: media or text, then any
// attached location, CTA button, and API side effect.
func (it *Interpreter) emitMessage(ctx context.Context, to string, node Node, result *StepResult) {
	switch {
	case node.Link != "":
		if err := it.emitter.SendMedia(ctx, to, node.Link, node.FileType, node.Message); err != nil {
			log.Error().Err(err).Str("node_id", node.NodeID).Msg("media send failed")
		} else {
			result.Messages++
		}
	case node.Message != "":
		it.emitText(ctx, to, node.Message, result)
	}

	if node.Location != nil {
		if err := it.emitter.SendLocation(ctx, to, *node.Location); err != nil {
			log.Error().Err(err).Str("node_id", node.NodeID).Msg("location send failed")
		} else {
			result.Messages++
		}
	}
	if node.CTA != nil {
		if err := it.emitter.SendCTA(ctx, to, node.Message, *node.CTA); err != nil {
			log.Error().Err(err).Str("node_id", node.NodeID).Msg("cta send failed")
		} else {
			result.Messages++
		}
	}
	if node.API != nil {
		if err := it.emitter.CallAPI(ctx, *node.API); err != nil {
			log.Error().Err(err).Str("endpoint", node.API.Endpoint).Msg("node api call failed")
		}
	}
}

// emitOptionMenu renders the menu body plus a numbered list of options
// as a single text message.
func (it *Interpreter) emitOptionMenu(ctx context.Context, to string, node Node, result *StepResult) {
	var b strings.Builder
	if node.Message != "" {
		b.WriteString(node.Message)
		b.WriteString("\n\n")
	}
	for i, child := range node.Children {
		fmt.Fprintf(&b, "%d. %s\n", i+1, child.Message)
	}
	it.emitText(ctx, to, strings.TrimRight(b.String(), "\n"), result)
}

func (it *Interpreter) emitButtonMenu(ctx context.Context, to string, node Node, result *StepResult) {
	buttons := make([]Button, 0, len(node.Children))
	for _, child := range node.Children {
		buttons = append(buttons, Button{ID: child.NodeID, Title: child.Message})
	}
	if err := it.emitter.SendButtons(ctx, to, node.Message, buttons); err != nil {
		log.Error().Err(err).Str("node_id", node.NodeID).Msg("button send failed, degrading to numbered list")
		it.emitOptionMenu(ctx, to, node, result)
		return
	}
	result.Messages++
}

func (it *Interpreter) emitText(ctx context.Context, to, body string, result *StepResult) {
	if err := it.emitter.SendText(ctx, to, body); err != nil {
		log.Error().Err(err).Msg("text send failed")
		return
	}
	result.Messages++
}

func findChildByID(node Node, id string) (Child, bool) {
	for _, child := range node.Children {
		if child.NodeID == id {
			return child, true
		}
	}
	return Child{}, false
}

// matchChildText matches a typed reply against button titles, so
// customers who type the label instead of tapping still progress.
func matchChildText(node Node, input string) (Child, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, child := range node.Children {
		if strings.ToLower(strings.TrimSpace(child.Message)) == input {
			return child, true
		}
	}
	return Child{}, false
}

// selectOption interprets input as a 1-based index first, then as an
// option label.
func selectOption(node Node, input string) (Child, bool) {
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(node.Children) {
			return node.Children[n-1], true
		}
		return Child{}, false
	}
	return matchChildText(node, input)
}
