package flow

import (
	"context"
	"fmt"
	"testing"
)

type emitted struct {
	kind string // text, media, buttons, location, cta, api
	body string
}

type fakeEmitter struct {
	sent       []emitted
	buttonsErr error
}

func (f *fakeEmitter) SendText(ctx context.Context, to, body string) error {
	f.sent = append(f.sent, emitted{kind: "text", body: body})
	return nil
}

func (f *fakeEmitter) SendMedia(ctx context.Context, to, link, fileType, caption string) error {
	f.sent = append(f.sent, emitted{kind: "media", body: link})
	return nil
}

func (f *fakeEmitter) SendButtons(ctx context.Context, to, body string, buttons []Button) error {
	if f.buttonsErr != nil {
		return f.buttonsErr
	}
	f.sent = append(f.sent, emitted{kind: "buttons", body: body})
	return nil
}

func (f *fakeEmitter) SendLocation(ctx context.Context, to string, loc Location) error {
	f.sent = append(f.sent, emitted{kind: "location", body: loc.Name})
	return nil
}

func (f *fakeEmitter) SendCTA(ctx context.Context, to, body string, cta CTAButton) error {
	f.sent = append(f.sent, emitted{kind: "cta", body: cta.URL})
	return nil
}

func (f *fakeEmitter) CallAPI(ctx context.Context, call APICall) error {
	f.sent = append(f.sent, emitted{kind: "api", body: call.Endpoint})
	return nil
}

func newTestInterpreter() (*Interpreter, *fakeEmitter) {
	emitter := &fakeEmitter{}
	return NewInterpreter(emitter, 0), emitter
}

func linearGraph() Graph {
	return Graph{
		StartKey: {NodeID: StartKey, Type: StartNode, Next: "n1"},
		"n1":     {NodeID: "n1", Type: MessageNode, Message: "first", Next: "n2"},
		"n2":     {NodeID: "n2", Type: MessageNode, Message: "second"},
	}
}

func menuGraph() Graph {
	return Graph{
		StartKey: {NodeID: StartKey, Type: StartNode, Next: "menu"},
		"menu": {NodeID: "menu", Type: OptionMenu, Message: "Pick one", Children: []Child{
			{NodeID: "opt1", Type: OptionLeaf, Message: "Pricing", Next: "pricing"},
			{NodeID: "opt2", Type: OptionLeaf, Message: "Support", Next: "agent"},
		}},
		"pricing": {NodeID: "pricing", Type: MessageNode, Message: "Our pricing page: example.com"},
		"agent":   {NodeID: "agent", Type: ChatWithAgent, Message: "Connecting you to an agent."},
	}
}

func buttonGraph() Graph {
	return Graph{
		StartKey: {NodeID: StartKey, Type: StartNode, Next: "menu"},
		"menu": {NodeID: "menu", Type: ButtonMenu, Message: "How can we help?", Children: []Child{
			{NodeID: "btn_hours", Type: ButtonLeaf, Message: "Opening hours", Next: "hours"},
			{NodeID: "btn_agent", Type: ButtonLeaf, Message: "Talk to us", Next: "agent"},
		}},
		"hours": {NodeID: "hours", Type: MessageNode, Message: "We're open 9 to 5."},
		"agent": {NodeID: "agent", Type: ChatWithAgent},
	}
}

func TestLinearCascadeEmitsAllMessages(t *testing.T) {
	it, emitter := newTestInterpreter()

	result := it.Start(context.Background(), linearGraph(), "628123")
	if !result.Ended || result.CurrentNode != "" {
		t.Fatalf("expected ended flow, got %+v", result)
	}
	if result.Messages != 2 || len(emitter.sent) != 2 {
		t.Fatalf("expected 2 messages from a 3-node chain, got %d", result.Messages)
	}
	if emitter.sent[0].body != "first" || emitter.sent[1].body != "second" {
		t.Fatalf("wrong order: %+v", emitter.sent)
	}
}

func TestCascadeStopsAtWaitingNode(t *testing.T) {
	it, emitter := newTestInterpreter()

	result := it.Start(context.Background(), menuGraph(), "628123")
	if result.CurrentNode != "menu" || result.Ended {
		t.Fatalf("expected to wait at menu, got %+v", result)
	}
	if len(emitter.sent) != 1 || emitter.sent[0].kind != "text" {
		t.Fatalf("expected one rendered menu, got %+v", emitter.sent)
	}
	want := "Pick one\n\n1. Pricing\n2. Support"
	if emitter.sent[0].body != want {
		t.Fatalf("menu body = %q, want %q", emitter.sent[0].body, want)
	}
}

func TestOptionSelectionByNumber(t *testing.T) {
	it, emitter := newTestInterpreter()

	result := it.Resume(context.Background(), menuGraph(), "menu", "1", false, false, "628123")
	if !result.Ended {
		t.Fatalf("expected flow to end after leaf message, got %+v", result)
	}
	if len(emitter.sent) != 1 || emitter.sent[0].body != "Our pricing page: example.com" {
		t.Fatalf("got %+v", emitter.sent)
	}
}

func TestOptionSelectionByLabel(t *testing.T) {
	it, _ := newTestInterpreter()

	result := it.Resume(context.Background(), menuGraph(), "menu", "pricing", false, false, "628123")
	if !result.Ended || result.Messages != 1 {
		t.Fatalf("expected label match to progress, got %+v", result)
	}
}

func TestOutOfRangeSelectionIsNoOp(t *testing.T) {
	it, emitter := newTestInterpreter()

	for _, input := range []string{"0", "3", "-1", "banana"} {
		result := it.Resume(context.Background(), menuGraph(), "menu", input, false, false, "628123")
		if !result.NoMatch || result.CurrentNode != "menu" {
			t.Fatalf("input %q: expected no-op keeping state, got %+v", input, result)
		}
	}
	if len(emitter.sent) != 0 {
		t.Fatalf("no-op must not emit, got %+v", emitter.sent)
	}
}

func TestOptionRoutesToAgentHandoff(t *testing.T) {
	it, emitter := newTestInterpreter()

	result := it.Resume(context.Background(), menuGraph(), "menu", "2", false, false, "628123")
	if !result.Ended || !result.Handoff {
		t.Fatalf("expected agent handoff, got %+v", result)
	}
	if len(emitter.sent) != 1 || emitter.sent[0].body != "Connecting you to an agent." {
		t.Fatalf("got %+v", emitter.sent)
	}
}

func TestButtonReplyFollowsChildNext(t *testing.T) {
	it, emitter := newTestInterpreter()

	result := it.Resume(context.Background(), buttonGraph(), "menu", "btn_hours", true, false, "628123")
	if !result.Ended {
		t.Fatalf("got %+v", result)
	}
	if len(emitter.sent) != 1 || emitter.sent[0].body != "We're open 9 to 5." {
		t.Fatalf("got %+v", emitter.sent)
	}
}

func TestButtonReplyResolvesAfterExpiry(t *testing.T) {
	it, _ := newTestInterpreter()

	// The customer taps a button on an old message after the session
	// deadline. The tap must still resolve.
	result := it.Resume(context.Background(), buttonGraph(), "menu", "btn_hours", true, true, "628123")
	if result.Expired {
		t.Fatal("button reply must not be gated by expiry")
	}
	if !result.Ended || result.Messages != 1 {
		t.Fatalf("expected button to resolve normally, got %+v", result)
	}
}

func TestTypedInputAfterExpiry(t *testing.T) {
	it, emitter := newTestInterpreter()

	result := it.Resume(context.Background(), buttonGraph(), "menu", "opening hours", false, true, "628123")
	if !result.Expired {
		t.Fatalf("typed input after expiry must report Expired, got %+v", result)
	}
	if len(emitter.sent) != 0 {
		t.Fatal("expired session must not emit")
	}

	result = it.Resume(context.Background(), menuGraph(), "menu", "1", false, true, "628123")
	if !result.Expired {
		t.Fatalf("numeric selection after expiry must report Expired, got %+v", result)
	}
}

func TestTypedButtonLabelMatches(t *testing.T) {
	it, _ := newTestInterpreter()

	result := it.Resume(context.Background(), buttonGraph(), "menu", "Opening hours", false, false, "628123")
	if !result.Ended || result.Messages != 1 {
		t.Fatalf("typed label should match a button, got %+v", result)
	}
}

func TestButtonSendDegradesToNumberedList(t *testing.T) {
	emitter := &fakeEmitter{buttonsErr: fmt.Errorf("interactive messages unsupported")}
	it := NewInterpreter(emitter, 0)

	result := it.Start(context.Background(), buttonGraph(), "628123")
	if result.CurrentNode != "menu" {
		t.Fatalf("got %+v", result)
	}
	if len(emitter.sent) != 1 || emitter.sent[0].kind != "text" {
		t.Fatalf("expected text fallback, got %+v", emitter.sent)
	}
}

func TestNumberedSelectionAfterButtonDegradation(t *testing.T) {
	emitter := &fakeEmitter{buttonsErr: fmt.Errorf("interactive messages unsupported")}
	it := NewInterpreter(emitter, 0)

	result := it.Start(context.Background(), buttonGraph(), "628123")
	if result.CurrentNode != "menu" {
		t.Fatalf("got %+v", result)
	}
	want := "How can we help?\n\n1. Opening hours\n2. Talk to us"
	if len(emitter.sent) != 1 || emitter.sent[0].body != want {
		t.Fatalf("degraded menu = %+v, want %q", emitter.sent, want)
	}

	// The customer answers the numbered list they were shown.
	result = it.Resume(context.Background(), buttonGraph(), "menu", "1", false, false, "628123")
	if !result.Ended || result.Messages != 1 {
		t.Fatalf("numeric reply must resolve the degraded menu, got %+v", result)
	}
	if emitter.sent[len(emitter.sent)-1].body != "We're open 9 to 5." {
		t.Fatalf("got %+v", emitter.sent)
	}
}

func TestDanglingNextHandsOff(t *testing.T) {
	it, _ := newTestInterpreter()
	g := Graph{
		StartKey: {NodeID: StartKey, Type: StartNode, Next: "n1"},
		"n1":     {NodeID: "n1", Type: MessageNode, Message: "hi", Next: "ghost"},
	}

	result := it.Start(context.Background(), g, "628123")
	if !result.Ended || !result.Handoff {
		t.Fatalf("expected graceful handoff on dangling reference, got %+v", result)
	}
	if result.Messages != 1 {
		t.Fatalf("messages before the break still count, got %d", result.Messages)
	}
}

func TestCyclicGraphIsBounded(t *testing.T) {
	emitter := &fakeEmitter{}
	it := NewInterpreter(emitter, 10)
	g := Graph{
		StartKey: {NodeID: StartKey, Type: StartNode, Next: "a"},
		"a":      {NodeID: "a", Type: MessageNode, Message: "ping", Next: "b"},
		"b":      {NodeID: "b", Type: MessageNode, Message: "pong", Next: "a"},
	}

	result := it.Start(context.Background(), g, "628123")
	if !result.Ended || !result.Handoff {
		t.Fatalf("expected bounded cascade to hand off, got %+v", result)
	}
	if len(emitter.sent) > 10 {
		t.Fatalf("cascade emitted %d messages past the bound", len(emitter.sent))
	}
}

func TestFreeTextNodeContinues(t *testing.T) {
	it, emitter := newTestInterpreter()
	g := Graph{
		StartKey: {NodeID: StartKey, Type: StartNode, Next: "ask"},
		"ask":    {NodeID: "ask", Type: MessageNode, Message: "What's your order number?", NeedResponse: true, Next: "thanks"},
		"thanks": {NodeID: "thanks", Type: MessageNode, Message: "Thanks, checking now."},
	}

	result := it.Start(context.Background(), g, "628123")
	if result.CurrentNode != "ask" {
		t.Fatalf("expected to wait for the answer, got %+v", result)
	}

	result = it.Resume(context.Background(), g, "ask", "ORD-123", false, false, "628123")
	if !result.Ended || result.Messages != 1 {
		t.Fatalf("expected continuation after free text, got %+v", result)
	}
	if emitter.sent[len(emitter.sent)-1].body != "Thanks, checking now." {
		t.Fatalf("got %+v", emitter.sent)
	}
}

func TestMissingSessionNodeHandsOff(t *testing.T) {
	it, _ := newTestInterpreter()

	result := it.Resume(context.Background(), menuGraph(), "deleted", "1", false, false, "628123")
	if !result.Ended || !result.Handoff {
		t.Fatalf("expected handoff for stale session node, got %+v", result)
	}
}

func TestMediaAndExtrasEmission(t *testing.T) {
	it, emitter := newTestInterpreter()
	g := Graph{
		StartKey: {NodeID: StartKey, Type: StartNode, Next: "rich"},
		"rich": {NodeID: "rich", Type: MessageNode, Message: "Visit us",
			Link: "https://cdn.example.com/map.png", FileType: "image",
			Location: &Location{Name: "HQ", Latitude: -6.2, Longitude: 106.8},
			CTA:      &CTAButton{ButtonText: "Directions", URL: "https://maps.example.com"},
			API:      &APICall{Method: "POST", Endpoint: "https://hooks.example.com/visit"}},
	}

	result := it.Start(context.Background(), g, "628123")
	if !result.Ended || result.Messages != 3 {
		t.Fatalf("expected media + location + cta, got %+v", result)
	}
	kinds := make([]string, 0, len(emitter.sent))
	for _, m := range emitter.sent {
		kinds = append(kinds, m.kind)
	}
	want := []string{"media", "location", "cta", "api"}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("emission order = %v, want %v", kinds, want)
		}
	}
}
