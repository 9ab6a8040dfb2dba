package resolve

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/zhouzirui/z-butler/backend/internal/model/dialog"
)

// Completer abstracts the remote completion backend so the engine can be
// tested without network access. Implementations never fail; they degrade
// to a fixed apology string instead.
type Completer interface {
	Complete(ctx context.Context, input string) string
}

var nameTemplates = []string{
	"Nice to meet you, %s!",
	"Hello %s, how can I help you today?",
	"%s, what a lovely name. What can I do for you?",
}

var greetings = []string{
	"Hello! How can I help you today?",
	"Hi there, good to see you. What's on your mind?",
	"Greetings! Ask me anything.",
}

var listeningReplies = []string{
	"I'm listening.",
	"I'm here. Say something and I'll do my best.",
	"Go ahead, I'm all ears.",
}

// tokenSplit mirrors regex-split semantics: consecutive delimiters collapse
// and empty tokens are dropped by the caller.
var tokenSplit = regexp.MustCompile(`[\s,;?!.\-]+`)

// Engine turns one free-text input into one reply through a prioritized
// chain of strategies: name extraction, knowledge lookup, rule scoring and
// finally the remote completion fallback. Resolve never fails.
type Engine struct {
	store     *dialog.Store
	completer Completer
}

// NewEngine builds a resolution engine over the shared dialog tables.
func NewEngine(store *dialog.Store, completer Completer) *Engine {
	return &Engine{store: store, completer: completer}
}

// Greeting returns a randomly chosen greeting for the greet shortcut.
func (e *Engine) Greeting() string {
	return pick(greetings)
}

// Resolve decides what to say. The first applicable branch wins.
func (e *Engine) Resolve(ctx context.Context, input string) string {
	if name, ok := ExtractName(input); ok {
		return fmt.Sprintf(pick(nameTemplates), name)
	}

	if reply, ok := e.lookupKnowledge(input); ok {
		return reply
	}

	if reply, ok := e.scoreRules(input); ok {
		return reply
	}

	if strings.TrimSpace(input) == "" {
		return pick(listeningReplies)
	}

	return e.completer.Complete(ctx, input)
}

// lookupKnowledge matches knowledge keywords by case-insensitive substring
// containment against the raw input, deliberately looser than the rule
// table's token equality.
func (e *Engine) lookupKnowledge(input string) (string, bool) {
	lowered := strings.ToLower(input)

	var candidates []dialog.KnowledgeEntry
	for _, entry := range e.store.Knowledge() {
		for _, keyword := range entry.Keywords {
			if keyword == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				candidates = append(candidates, entry)
				break
			}
		}
	}

	if len(candidates) == 0 {
		return "", false
	}

	entry := candidates[rand.Intn(len(candidates))]
	return pick(entry.Responses), true
}

// scoreRules selects the highest-scoring eligible rule as an ordinary fold:
// max score wins, ties resolve to the first rule reaching the maximum in
// table order. A maximum of zero yields nothing.
func (e *Engine) scoreRules(input string) (string, bool) {
	tokens := tokenize(input)
	if len(tokens) == 0 {
		return "", false
	}

	tokenSet := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		tokenSet[token] = struct{}{}
	}

	bestIndex := -1
	bestScore := 0
	for i, rule := range e.store.Rules() {
		if !containsAll(tokenSet, rule.RequiredWords) {
			continue
		}

		keywords := make(map[string]struct{}, len(rule.Keywords))
		for _, keyword := range rule.Keywords {
			keywords[strings.ToLower(keyword)] = struct{}{}
		}

		score := 0
		for _, token := range tokens {
			if _, ok := keywords[token]; ok {
				score++
			}
		}

		if score > bestScore {
			bestScore = score
			bestIndex = i
		}
	}

	if bestIndex < 0 {
		return "", false
	}
	return pick(e.store.Rules()[bestIndex].Responses), true
}

func tokenize(input string) []string {
	var tokens []string
	for _, token := range tokenSplit.Split(strings.ToLower(input), -1) {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func containsAll(tokenSet map[string]struct{}, required []string) bool {
	for _, word := range required {
		if _, ok := tokenSet[strings.ToLower(word)]; !ok {
			return false
		}
	}
	return true
}

func pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	if len(options) == 1 {
		return options[0]
	}
	return options[rand.Intn(len(options))]
}
