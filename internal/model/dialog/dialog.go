package dialog

// ResponseRule is one entry of the scored rule table. RequiredWords gate
// eligibility: every required word must appear in the tokenized input before
// the rule may accumulate score. Keywords are the tokens that actually score.
type ResponseRule struct {
	RequiredWords []string `json:"required_words"`
	Keywords      []string `json:"user_input_keywords"`
	Responses     []string `json:"bot_responses"`
}

// KnowledgeEntry is one entry of the curated knowledge table, matched by
// case-insensitive substring containment against the raw input.
type KnowledgeEntry struct {
	Keywords  []string `json:"keywords"`
	Responses []string `json:"responses"`
}

// Store holds both dialog tables. It is constructed once at startup and
// read-only afterwards, so sessions share it without locking.
type Store struct {
	rules     []ResponseRule
	knowledge []KnowledgeEntry
}

// NewStore returns a Store preloaded with the supplied tables.
func NewStore(rules []ResponseRule, knowledge []KnowledgeEntry) *Store {
	return &Store{
		rules:     append([]ResponseRule(nil), rules...),
		knowledge: append([]KnowledgeEntry(nil), knowledge...),
	}
}

// Rules returns the rule table in load order.
func (s *Store) Rules() []ResponseRule {
	return s.rules
}

// Knowledge returns the knowledge table in load order.
func (s *Store) Knowledge() []KnowledgeEntry {
	return s.knowledge
}
