package input

import (
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/dshills/expando/internal/event"
	"github.com/dshills/expando/internal/match"
)

// OnMatchFunc is invoked when a trigger completes. trailingSeparator is
// non-nil iff the match's WordBoundary flag required a separator and one
// was just typed; its value is that separator character.
type OnMatchFunc func(m match.Match, trailingSeparator *string)

// candidate is a match paired with its trigger pre-split into grapheme
// clusters, so the hot path never re-segments a trigger string.
type candidate struct {
	m        match.Match
	clusters []string
}

// Matcher recognizes configured triggers inside a stream of events. It
// has no knowledge of channels or threads: callers feed it events one at
// a time from whatever goroutine owns the Event Source, and its callback
// runs synchronously before the next Feed call — the same re-entrancy
// contract the Event Source's native callback offers.
type Matcher struct {
	candidates []candidate
	maxLen     int
	buf        []string
	onMatch    OnMatchFunc
}

// New builds a Matcher over the given store's current match set. The
// store is treated as read-only; a config reload must build a fresh
// Matcher rather than mutate this one's candidate set mid-stream.
func New(store *match.Store, onMatch OnMatchFunc) *Matcher {
	ms := store.Matches()
	cands := make([]candidate, 0, len(ms))
	maxLen := 0
	for _, m := range ms {
		clusters := splitGraphemes(m.Trigger)
		if len(clusters) == 0 {
			continue
		}
		cands = append(cands, candidate{m: m, clusters: clusters})
		if len(clusters) > maxLen {
			maxLen = len(clusters)
		}
	}
	return &Matcher{
		candidates: cands,
		maxLen:     maxLen,
		onMatch:    onMatch,
	}
}

// Feed processes a single event. Char events extend the buffer and may
// complete a trigger; Modifier events either pop (BACKSPACE), leave the
// buffer untouched (SHIFT), or reset it (everything else — the caret may
// have moved and our view of it is no longer reliable).
func (mr *Matcher) Feed(ev event.Event) {
	if ev.IsModifier() {
		mr.feedModifier(ev.Modifier)
		return
	}
	mr.feedChar(ev.Char)
}

func (mr *Matcher) feedModifier(mod event.Modifier) {
	switch {
	case mod == event.BACKSPACE:
		if len(mr.buf) > 0 {
			mr.buf = mr.buf[:len(mr.buf)-1]
		}
	case mod.ResetsMatcher():
		mr.reset()
	}
}

func (mr *Matcher) feedChar(c string) {
	mr.buf = append(mr.buf, c)
	// One cluster beyond the longest trigger is kept so a word-boundary
	// trigger can still be compared after its separator is appended.
	if mr.maxLen > 0 && len(mr.buf) > mr.maxLen+1 {
		mr.buf = mr.buf[len(mr.buf)-mr.maxLen-1:]
	}

	best, bestLen := -1, 0
	var bestSep *string
	for i := range mr.candidates {
		cand := &mr.candidates[i]
		n := len(cand.clusters)
		if n == 0 || n > len(mr.buf) {
			continue
		}
		var sep *string
		if cand.m.WordBoundary {
			// The separator just typed follows the trigger, so the trigger
			// must end one cluster before the end of the buffer.
			if !isWordBoundary(c) || n+1 > len(mr.buf) || !suffixEquals(mr.buf[:len(mr.buf)-1], cand.clusters) {
				continue
			}
			sepVal := c
			sep = &sepVal
		} else if !suffixEquals(mr.buf, cand.clusters) {
			continue
		}
		// Longest trigger wins; among equal lengths the earlier-declared
		// candidate already found wins, so only a strictly longer match
		// replaces it.
		if n > bestLen {
			best, bestLen, bestSep = i, n, sep
		}
	}

	if best < 0 {
		return
	}
	matched := mr.candidates[best].m
	mr.reset()
	if mr.onMatch != nil {
		mr.onMatch(matched, bestSep)
	}
}

func (mr *Matcher) reset() {
	mr.buf = mr.buf[:0]
}

// suffixEquals reports whether the last len(trigger) clusters of buf
// equal trigger exactly.
func suffixEquals(buf, trigger []string) bool {
	off := len(buf) - len(trigger)
	for i, c := range trigger {
		if buf[off+i] != c {
			return false
		}
	}
	return true
}

// isWordBoundary reports whether c is a separator character: whitespace
// or punctuation, matching spec's "whitespace, punctuation" definition of
// the trailing separator that completes a word_boundary trigger.
func isWordBoundary(c string) bool {
	for _, r := range c {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}
	return false
}

// splitGraphemes segments s into user-perceived characters so trigger
// length and comparison agree with the Char events the Event Source
// produces (themselves single grapheme clusters).
func splitGraphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
