package dialog

import (
	"encoding/json"
	"log"
	"os"
)

// LoadRules reads the rule table from a JSON file. A missing or malformed
// file degrades to an empty table so the service can still start; rules
// without responses are dropped because they can never be selected.
func LoadRules(path string) []ResponseRule {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[dialog] rule table unavailable, starting empty: %v", err)
		return nil
	}

	var rules []ResponseRule
	if err := json.Unmarshal(data, &rules); err != nil {
		log.Printf("[dialog] rule table malformed, starting empty: %v", err)
		return nil
	}

	valid := rules[:0]
	for _, rule := range rules {
		if len(rule.Responses) == 0 {
			log.Printf("[dialog] dropping rule without responses: keywords=%v", rule.Keywords)
			continue
		}
		valid = append(valid, rule)
	}
	return valid
}

// LoadKnowledge reads the knowledge table from a JSON file with the same
// degrade-to-empty behavior as LoadRules.
func LoadKnowledge(path string) []KnowledgeEntry {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[dialog] knowledge table unavailable, starting empty: %v", err)
		return nil
	}

	var entries []KnowledgeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[dialog] knowledge table malformed, starting empty: %v", err)
		return nil
	}

	valid := entries[:0]
	for _, entry := range entries {
		if len(entry.Keywords) == 0 || len(entry.Responses) == 0 {
			log.Printf("[dialog] dropping incomplete knowledge entry: keywords=%v", entry.Keywords)
			continue
		}
		valid = append(valid, entry)
	}
	return valid
}
