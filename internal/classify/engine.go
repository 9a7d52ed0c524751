package classify

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Group is an ordered, named set of match phrases. Group declaration order
// is the precedence order: when phrases from several groups occur in the
// same text, the earliest declared group wins.
type Group struct {
	Name    string
	Phrases []string
}

// hit records which group and phrase a pattern index stands for. A phrase
// occurring in several groups keeps a single pattern entry carrying
// multiple hits.
type hit struct {
	group  int
	pos    int
	phrase string
}

// Matcher answers "which group claims this text" with a single
// Aho-Corasick pass over every phrase of every group.
type Matcher struct {
	matcher *ahocorasick.Matcher
	hits    [][]hit
	groups  []Group
}

func NewMatcher(groups []Group) *Matcher {
	m := &Matcher{groups: groups}
	index := make(map[string]int)
	var patterns [][]byte
	for gi, g := range groups {
		for pi, phrase := range g.Phrases {
			upper := strings.ToUpper(phrase)
			if upper == "" {
				continue
			}
			idx, seen := index[upper]
			if !seen {
				idx = len(patterns)
				index[upper] = idx
				patterns = append(patterns, []byte(upper))
				m.hits = append(m.hits, nil)
			}
			m.hits[idx] = append(m.hits[idx], hit{group: gi, pos: pi, phrase: phrase})
		}
	}
	if len(patterns) > 0 {
		m.matcher = ahocorasick.NewMatcher(patterns)
	}
	return m
}

// Match returns the winning group and phrase for text. Matching is
// case-insensitive substring containment; ties resolve to the earliest
// declared group, then the earliest phrase within it. ok is false when no
// phrase occurs.
func (m *Matcher) Match(text string) (group, phrase string, ok bool) {
	if m.matcher == nil {
		return "", "", false
	}
	matches := m.matcher.Match([]byte(strings.ToUpper(text)))
	if len(matches) == 0 {
		return "", "", false
	}
	best := hit{group: len(m.groups)}
	for _, idx := range matches {
		if idx < 0 || idx >= len(m.hits) {
			continue
		}
		for _, h := range m.hits[idx] {
			if h.group < best.group || (h.group == best.group && h.pos < best.pos) {
				best = h
			}
		}
	}
	if best.group == len(m.groups) {
		return "", "", false
	}
	return m.groups[best.group].Name, best.phrase, true
}
