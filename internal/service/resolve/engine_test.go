package resolve

import (
	"context"
	"strings"
	"testing"

	"github.com/zhouzirui/z-butler/backend/internal/model/dialog"
)

type fakeCompleter struct {
	reply string
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ string) string {
	f.calls++
	return f.reply
}

func newTestEngine(rules []dialog.ResponseRule, knowledge []dialog.KnowledgeEntry) (*Engine, *fakeCompleter) {
	completer := &fakeCompleter{reply: "remote reply"}
	return NewEngine(dialog.NewStore(rules, knowledge), completer), completer
}

func TestResolveNameBranchWinsOverEverything(t *testing.T) {
	rules := []dialog.ResponseRule{{
		Keywords:  []string{"name"},
		Responses: []string{"rule reply"},
	}}
	knowledge := []dialog.KnowledgeEntry{{
		Keywords:  []string{"name"},
		Responses: []string{"knowledge reply"},
	}}
	engine, completer := newTestEngine(rules, knowledge)

	reply := engine.Resolve(context.Background(), "my name is Ada")
	if !strings.Contains(reply, "Ada") {
		t.Fatalf("expected reply to contain the name, got %q", reply)
	}
	if reply == "rule reply" || reply == "knowledge reply" {
		t.Fatalf("name branch should win, got %q", reply)
	}
	if completer.calls != 0 {
		t.Fatalf("completer should not be called, got %d calls", completer.calls)
	}
}

func TestResolveKnowledgeSubstringMatch(t *testing.T) {
	knowledge := []dialog.KnowledgeEntry{{
		Keywords:  []string{"python"},
		Responses: []string{"Python is a programming language."},
	}}
	engine, completer := newTestEngine(nil, knowledge)

	// Substring containment, not token equality: "pythonic" still matches.
	reply := engine.Resolve(context.Background(), "is Go more Pythonic than Python?")
	if reply != "Python is a programming language." {
		t.Fatalf("expected knowledge reply, got %q", reply)
	}
	if completer.calls != 0 {
		t.Fatalf("completer should not be called, got %d calls", completer.calls)
	}
}

func TestResolveRuleScoring(t *testing.T) {
	ruleA := dialog.ResponseRule{
		Keywords:  []string{"hello"},
		Responses: []string{"reply A"},
	}
	ruleB := dialog.ResponseRule{
		RequiredWords: []string{"help"},
		Keywords:      []string{"help", "now"},
		Responses:     []string{"reply B"},
	}
	engine, completer := newTestEngine([]dialog.ResponseRule{ruleA, ruleB}, nil)
	ctx := context.Background()

	// "help me now": B eligible with score 2, A scores 0.
	if reply := engine.Resolve(ctx, "help me now"); reply != "reply B" {
		t.Fatalf("expected reply B, got %q", reply)
	}

	// "hello": A scores 1, B ineligible (required word missing).
	if reply := engine.Resolve(ctx, "hello"); reply != "reply A" {
		t.Fatalf("expected reply A, got %q", reply)
	}

	// No keyword overlap anywhere: falls through to the remote branch.
	if reply := engine.Resolve(ctx, "nothing matches"); reply != "remote reply" {
		t.Fatalf("expected remote reply, got %q", reply)
	}
	if completer.calls != 1 {
		t.Fatalf("expected exactly one completer call, got %d", completer.calls)
	}
}

func TestResolveRuleTieBreaksToFirst(t *testing.T) {
	first := dialog.ResponseRule{Keywords: []string{"tea"}, Responses: []string{"first"}}
	second := dialog.ResponseRule{Keywords: []string{"tea"}, Responses: []string{"second"}}
	engine, _ := newTestEngine([]dialog.ResponseRule{first, second}, nil)

	for i := 0; i < 10; i++ {
		if reply := engine.Resolve(context.Background(), "tea please"); reply != "first" {
			t.Fatalf("tie must resolve to the first rule, got %q", reply)
		}
	}
}

func TestResolveRequiredWordsGateButDoNotScore(t *testing.T) {
	// Eligibility depends only on required words while score counts only
	// input keywords; a satisfied rule with no keyword hits still yields
	// score zero and falls through.
	rule := dialog.ResponseRule{
		RequiredWords: []string{"weather"},
		Keywords:      []string{"tomorrow"},
		Responses:     []string{"rule reply"},
	}
	engine, completer := newTestEngine([]dialog.ResponseRule{rule}, nil)

	if reply := engine.Resolve(context.Background(), "weather today"); reply != "remote reply" {
		t.Fatalf("expected fall-through to remote, got %q", reply)
	}
	if completer.calls != 1 {
		t.Fatalf("expected one completer call, got %d", completer.calls)
	}
}

func TestResolveTokenizerPunctuation(t *testing.T) {
	rule := dialog.ResponseRule{
		RequiredWords: []string{"help"},
		Keywords:      []string{"help", "now"},
		Responses:     []string{"reply B"},
	}
	engine, _ := newTestEngine([]dialog.ResponseRule{rule}, nil)

	// Delimiters collapse and empty tokens drop.
	if reply := engine.Resolve(context.Background(), "Help!! -- me,, now..."); reply != "reply B" {
		t.Fatalf("expected reply B after tokenization, got %q", reply)
	}
}

func TestResolveEmptyInputSkipsRemote(t *testing.T) {
	engine, completer := newTestEngine(nil, nil)

	reply := engine.Resolve(context.Background(), "   \t ")
	found := false
	for _, canned := range listeningReplies {
		if reply == canned {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected a canned listening reply, got %q", reply)
	}
	if completer.calls != 0 {
		t.Fatalf("remote must not be called for blank input, got %d calls", completer.calls)
	}
}

func TestResolveEmptyTablesFallThrough(t *testing.T) {
	engine, completer := newTestEngine(nil, nil)

	if reply := engine.Resolve(context.Background(), "tell me a story"); reply != "remote reply" {
		t.Fatalf("expected remote reply, got %q", reply)
	}
	if completer.calls != 1 {
		t.Fatalf("expected one completer call, got %d", completer.calls)
	}
}

func TestGreetingIsOneOfTemplates(t *testing.T) {
	engine, _ := newTestEngine(nil, nil)

	greeting := engine.Greeting()
	for _, candidate := range greetings {
		if greeting == candidate {
			return
		}
	}
	t.Fatalf("greeting %q not in template set", greeting)
}
