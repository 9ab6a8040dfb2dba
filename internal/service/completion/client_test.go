package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	reply string
	err   error
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func newTestClient(t *testing.T, chatModel model.BaseChatModel) *Client {
	t.Helper()
	client, err := NewClientWithModel(context.Background(), chatModel)
	if err != nil {
		t.Fatalf("NewClientWithModel err: %v", err)
	}
	return client
}

func TestCompleteTrimsText(t *testing.T) {
	client := newTestClient(t, &fakeChatModel{reply: "  a helpful answer \n"})

	if got := client.Complete(context.Background(), "question"); got != "a helpful answer" {
		t.Fatalf("unexpected completion: %q", got)
	}
}

func TestCompleteFailureReturnsApology(t *testing.T) {
	client := newTestClient(t, &fakeChatModel{err: errors.New("connection refused")})

	if got := client.Complete(context.Background(), "question"); got != apologyReply {
		t.Fatalf("expected apology, got %q", got)
	}
}

func TestCompleteBlankCompletionReturnsApology(t *testing.T) {
	client := newTestClient(t, &fakeChatModel{reply: "   "})

	if got := client.Complete(context.Background(), "question"); got != apologyReply {
		t.Fatalf("expected apology, got %q", got)
	}
}

func TestDisabledCompleter(t *testing.T) {
	if got := (Disabled{}).Complete(context.Background(), "anything"); got != apologyReply {
		t.Fatalf("expected apology, got %q", got)
	}
}
