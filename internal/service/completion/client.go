package completion

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/z-butler/backend/internal/config"
)

// apologyReply is the fixed degraded result for every failure mode of the
// remote backend. The session layer never sees an error from this package.
const apologyReply = "Sorry, I could not reach my reasoning backend."

const requestTimeout = 60 * time.Second

// Client sends single-turn prompts to the configured completion backend.
type Client struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewClient builds the client from configuration.
func NewClient(ctx context.Context, cfg config.CompletionConfig) (*Client, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return NewClientWithModel(ctx, chatModel)
}

// NewClientWithModel wires an existing chat model into a one-turn chain.
// Exposed so tests can substitute a fake model.
func NewClientWithModel(ctx context.Context, chatModel model.BaseChatModel) (*Client, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &Client{chain: runnable}, nil
}

// Complete forwards the prompt verbatim and returns the trimmed completion
// text. Transport failures, timeouts and blank completions all collapse to
// the apology reply.
func (c *Client) Complete(ctx context.Context, input string) string {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	response, err := c.chain.Invoke(ctx, map[string]any{"query": input})
	if err != nil {
		log.Printf("[completion] request failed: %v", err)
		return apologyReply
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		log.Printf("[completion] backend returned an empty completion")
		return apologyReply
	}
	return text
}

// Disabled is the stand-in completer used when the backend could not be
// initialized at startup. It answers with the same apology the Client uses
// for transient failures.
type Disabled struct{}

// Complete always returns the apology reply.
func (Disabled) Complete(_ context.Context, _ string) string {
	return apologyReply
}
