package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/chatandika/wa-automation-be/internal/core/rules"
)

type fakeMaterials struct {
	bodies map[string]string
	err    error
}

func (f *fakeMaterials) GetBody(ctx context.Context, materialID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.bodies[materialID], nil
}

type fakeSender struct {
	texts       []string
	templates   []string
	textErr     error
	templateErr error
}

func (f *fakeSender) SendText(ctx context.Context, to, body string) error {
	if f.textErr != nil {
		return f.textErr
	}
	f.texts = append(f.texts, body)
	return nil
}

func (f *fakeSender) SendTemplate(ctx context.Context, to, templateName string) error {
	if f.templateErr != nil {
		return f.templateErr
	}
	f.templates = append(f.templates, templateName)
	return nil
}

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

type fakeRecorder struct {
	recorded []string
}

func (f *fakeRecorder) RecordBotMessage(ctx context.Context, conversationID, body string) error {
	f.recorded = append(f.recorded, body)
	return nil
}

func newTestDispatcher() (*Dispatcher, *fakeSender, *fakeRecorder) {
	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	d := NewDispatcher(&fakeMaterials{bodies: map[string]string{"m1": "stored body"}},
		sender, &fakeGenerator{reply: "ai reply"}, recorder)
	return d, sender, recorder
}

func TestTextRuleSendsBody(t *testing.T) {
	d, sender, recorder := newTestDispatcher()

	out, err := d.Dispatch(context.Background(), &rules.Rule{ID: "5", ResponseType: rules.ResponseText, Body: "hello"}, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeSent || out.Text != "hello" {
		t.Fatalf("got %+v", out)
	}
	if len(sender.texts) != 1 || len(recorder.recorded) != 1 {
		t.Fatalf("expected exactly one send and one record, got %d/%d", len(sender.texts), len(recorder.recorded))
	}
}

func TestTextRulePrefersMaterial(t *testing.T) {
	d, sender, _ := newTestDispatcher()

	rule := &rules.Rule{ID: "5", ResponseType: rules.ResponseText, Body: "inline", MaterialID: "m1"}
	out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "stored body" || sender.texts[0] != "stored body" {
		t.Fatalf("expected material body, got %+v", out)
	}
}

func TestTextRuleFallsBackToInlineOnMaterialError(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(&fakeMaterials{err: errors.New("db down")}, sender, &fakeGenerator{}, &fakeRecorder{})

	rule := &rules.Rule{ID: "5", ResponseType: rules.ResponseText, Body: "inline", MaterialID: "m1"}
	out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeSent || out.Text != "inline" {
		t.Fatalf("got %+v", out)
	}
}

func TestEmptyTextRuleSendsNothing(t *testing.T) {
	d, sender, recorder := newTestDispatcher()

	out, err := d.Dispatch(context.Background(), &rules.Rule{ID: "7", ResponseType: rules.ResponseText}, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeNothingSent {
		t.Fatalf("got %+v", out)
	}
	if len(sender.texts) != 0 || len(recorder.recorded) != 0 {
		t.Fatal("nothing should have been sent or recorded")
	}
}

func TestChatbotRuleHandsOff(t *testing.T) {
	d, sender, _ := newTestDispatcher()

	rule := &rules.Rule{ID: "9", ResponseType: rules.ResponseChatbot, ChatbotID: "bot-1"}
	out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeChatbot || out.ChatbotID != "bot-1" {
		t.Fatalf("got %+v", out)
	}
	if len(sender.texts) != 0 {
		t.Fatal("handoff must not send anything itself")
	}
}

func TestAIRuleSendsGeneratedReply(t *testing.T) {
	d, sender, _ := newTestDispatcher()

	rule := &rules.Rule{ID: "4", ResponseType: rules.ResponseAI, Body: "check in on the customer"}
	out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Text != "ai reply" || sender.texts[0] != "ai reply" {
		t.Fatalf("got %+v", out)
	}
}

func TestAIRuleFallsBackToPromptOnError(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(&fakeMaterials{}, sender, &fakeGenerator{err: errors.New("rate limited")}, &fakeRecorder{})

	rule := &rules.Rule{ID: "4", ResponseType: rules.ResponseAI, Body: "the prompt"}
	out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeSent || out.Text != "the prompt" {
		t.Fatalf("expected prompt body sent verbatim, got %+v", out)
	}
}

func TestTemplateRule(t *testing.T) {
	t.Run("sends template", func(t *testing.T) {
		d, sender, recorder := newTestDispatcher()
		rule := &rules.Rule{ID: "8", ResponseType: rules.ResponseTemplate, TemplateName: "follow_up"}

		out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
		if err != nil {
			t.Fatal(err)
		}
		if out.Kind != OutcomeSent || out.Fallback {
			t.Fatalf("got %+v", out)
		}
		if len(sender.templates) != 1 || len(recorder.recorded) != 1 {
			t.Fatalf("expected one template send and one record")
		}
	})

	t.Run("falls back to body text", func(t *testing.T) {
		sender := &fakeSender{templateErr: errors.New("template not approved")}
		d := NewDispatcher(&fakeMaterials{}, sender, &fakeGenerator{}, &fakeRecorder{})
		rule := &rules.Rule{ID: "8", ResponseType: rules.ResponseTemplate, TemplateName: "follow_up", Body: "plain version"}

		out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
		if err != nil {
			t.Fatal(err)
		}
		if out.Kind != OutcomeSent || !out.Fallback || out.Text != "plain version" {
			t.Fatalf("got %+v", out)
		}
	})

	t.Run("nothing sent without fallback body", func(t *testing.T) {
		sender := &fakeSender{templateErr: errors.New("template not approved")}
		d := NewDispatcher(&fakeMaterials{}, sender, &fakeGenerator{}, &fakeRecorder{})
		rule := &rules.Rule{ID: "8", ResponseType: rules.ResponseTemplate, TemplateName: "follow_up"}

		out, err := d.Dispatch(context.Background(), rule, "conv-1", "628123")
		if err != nil {
			t.Fatal(err)
		}
		if out.Kind != OutcomeNothingSent {
			t.Fatalf("got %+v", out)
		}
	})
}

func TestSendFailureReportsNothingSent(t *testing.T) {
	sender := &fakeSender{textErr: errors.New("network")}
	recorder := &fakeRecorder{}
	d := NewDispatcher(&fakeMaterials{}, sender, &fakeGenerator{}, recorder)

	out, err := d.Dispatch(context.Background(), &rules.Rule{ID: "5", ResponseType: rules.ResponseText, Body: "hi"}, "conv-1", "628123")
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != OutcomeNothingSent {
		t.Fatalf("got %+v", out)
	}
	if len(recorder.recorded) != 0 {
		t.Fatal("failed send must not be recorded")
	}
}
