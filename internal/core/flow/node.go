// Package flow implements the chatbot graph model and the traversal
// engine that drives scripted conversations.
package flow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeType discriminates the closed set of node variants.
type NodeType string

const (
	StartNode     NodeType = "START_NODE"
	MessageNode   NodeType = "CHAT_BOT_MSG_NODE"
	OptionMenu    NodeType = "OPTION_MESSAGE_NODE"
	ButtonMenu    NodeType = "BUTTON_MESSAGE_NODE"
	OptionLeaf    NodeType = "OPTION_NODE"
	ButtonLeaf    NodeType = "BUTTON_NODE"
	ChatWithAgent NodeType = "CHAT_WITH_AGENT"
)

// StartKey is the graph entry. Every valid graph has a node under it.
const StartKey = "start"

// Child is a selectable leaf under an option or button menu node.
type Child struct {
	NodeID  string   `json:"node_id"`
	Type    NodeType `json:"type"`
	Message string   `json:"message"` // option label / button title
	Next    string   `json:"next,omitempty"`
}

// CTAButton is an optional call-to-action URL button on a message node.
type CTAButton struct {
	ButtonText string `json:"button_text"`
	URL        string `json:"url"`
	Style      string `json:"style,omitempty"`
}

// Location is an optional location card on a message node.
type Location struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// APICall is an optional outbound HTTP side effect on a node. The
// response is not branched on; the node emits and continues.
type APICall struct {
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
}

// Node is one vertex of a tenant-authored chatbot graph.
type Node struct {
	NodeID       string     `json:"node_id"`
	Type         NodeType   `json:"type"`
	Message      string     `json:"message,omitempty"`
	Link         string     `json:"link,omitempty"`      // media URL
	FileType     string     `json:"file_type,omitempty"` // image, video, document, audio
	Children     []Child    `json:"children,omitempty"`
	Next         string     `json:"next,omitempty"` // empty = terminal
	NeedResponse bool       `json:"need_response,omitempty"`
	CTA          *CTAButton `json:"cta,omitempty"`
	Location     *Location  `json:"location,omitempty"`
	API          *APICall   `json:"api,omitempty"`
	Condition    string     `json:"condition,omitempty"`
}

// Graph maps node ids to nodes. Stored per chatbot as an opaque JSON
// blob; immutable during a single traversal step.
type Graph map[string]Node

// ParseGraph decodes a stored graph blob.
func ParseGraph(raw []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("failed to decode chatbot graph: %w", err)
	}
	return g, nil
}

// Validate checks graph integrity: a start node exists and every next
// and child reference resolves to a node in the graph (or is empty).
// Run on save so the builder surfaces dangling references early; the
// interpreter still guards against them at runtime.
func (g Graph) Validate() error {
	if _, ok := g[StartKey]; !ok {
		return fmt.Errorf("graph has no %q node", StartKey)
	}
	for id, node := range g {
		if node.Next != "" {
			if _, ok := g[node.Next]; !ok {
				return fmt.Errorf("node %q: next references unknown node %q", id, node.Next)
			}
		}
		for _, child := range node.Children {
			if child.Next != "" {
				if _, ok := g[child.Next]; !ok {
					return fmt.Errorf("node %q: child %q references unknown node %q", id, child.NodeID, child.Next)
				}
			}
		}
	}
	return nil
}

// MatchTrigger reports whether an inbound text activates a chatbot
// trigger phrase. Matching ignores case and a leading slash, and
// accepts either an exact match or the trigger appearing in the text.
func MatchTrigger(trigger, text string) bool {
	trigger = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(trigger), "/"))
	text = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(text), "/"))
	if trigger == "" {
		return false
	}
	return text == trigger || strings.Contains(text, trigger)
}
