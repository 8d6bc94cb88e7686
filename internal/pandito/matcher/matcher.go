// Package matcher resolves free-text queries against the place knowledge
// base.
//
// Resolution is a three-pass pipeline and the pass order is a contract, not
// an optimization: literal containment always beats fuzzy similarity, which
// in turn beats token-subset matching. Within a pass, entries are tried in
// knowledge-base file order and the first hit wins — overlapping keys (one
// key a prefix of another) resolve to whichever comes first in the file.
package matcher

import (
	"strings"

	"github.com/pandito-bot/pandito/internal/pandito/kb"
)

// fuzzyCutoff is the minimum similarity ratio for the fuzzy pass to accept
// its best candidate.
const fuzzyCutoff = 0.6

// Matcher resolves queries against an immutable knowledge base. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	kb *kb.KnowledgeBase
}

// New returns a Matcher over k.
func New(k *kb.KnowledgeBase) *Matcher {
	return &Matcher{kb: k}
}

// Match resolves query to a knowledge-base record, or nil when no pass
// succeeds. The result is binary: no ranked or partial candidates.
func (m *Matcher) Match(query string) *kb.Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || m.kb.Len() == 0 {
		return nil
	}

	// Pass 1: the key or the display name appears verbatim in the query.
	for _, rec := range m.kb.Records() {
		if strings.Contains(query, rec.Key) {
			return rec
		}
		if name := strings.ToLower(rec.Name); name != "" && strings.Contains(query, name) {
			return rec
		}
	}

	// Pass 2: closest key by similarity ratio, accepted only above the
	// cutoff. Strict comparison keeps the first-seen key on ties.
	var best *kb.Record
	bestRatio := 0.0
	for _, rec := range m.kb.Records() {
		if r := Ratio(query, rec.Key); r >= fuzzyCutoff && r > bestRatio {
			best, bestRatio = rec, r
		}
	}
	if best != nil {
		return best
	}

	// Pass 3: every whitespace token of a key occurs somewhere in the
	// query, in any order.
	for _, rec := range m.kb.Records() {
		if containsAllTokens(query, rec.Key) {
			return rec
		}
	}

	return nil
}

// containsAllTokens reports whether every whitespace-delimited token of key
// appears as a substring of query.
func containsAllTokens(query, key string) bool {
	tokens := strings.Fields(key)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !strings.Contains(query, tok) {
			return false
		}
	}
	return true
}
