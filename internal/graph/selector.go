package graph

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"
)

// bytesPerToken is the serialized-size-to-token ratio used for cost
// estimation: roughly four bytes of JSON per model token.
const bytesPerToken = 4

// Select ranks nodes by lexical relevance to query and returns the largest
// scored prefix whose estimated token cost fits tokenBudget. Scoring counts
// the distinct query tokens occurring (case-insensitively) in a node's
// summary, path, symbol names, and symbol summaries; nodes scoring zero are
// never returned. Ordering is descending score with ties broken by
// ascending path, so identical inputs yield identical output.
//
// Packing is greedy and whole-node: accumulation stops before the first
// node that would exceed the budget, and a node is never split across the
// boundary. A budget below the cheapest relevant node yields an empty
// result, not an error.
func (g *Graph) Select(query string, tokenBudget int) []FileNode {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	type scored struct {
		node  FileNode
		score int
	}
	var candidates []scored
	for _, n := range g.Nodes {
		sc := relevance(n, tokens)
		if sc > 0 {
			candidates = append(candidates, scored{node: n, score: sc})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].node.Path < candidates[j].node.Path
	})

	var out []FileNode
	spent := 0
	for _, c := range candidates {
		cost := EstimateCost(c.node)
		if spent+cost > tokenBudget {
			break
		}
		spent += cost
		out = append(out, cloneNode(c.node))
	}
	return out
}

// EstimateCost returns the estimated token cost of handing node to a
// context-window-bounded consumer, proportional to its serialized size.
func EstimateCost(n FileNode) int {
	data, err := json.Marshal(n)
	if err != nil {
		// Marshal of a plain struct cannot fail; keep the operation total.
		return 1
	}
	cost := len(data) / bytesPerToken
	if cost < 1 {
		cost = 1
	}
	return cost
}

// queryTokens lowercases and splits query into distinct word tokens.
func queryTokens(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// relevance counts the distinct query tokens present in the node's
// searchable text.
func relevance(n FileNode, tokens []string) int {
	var b strings.Builder
	b.WriteString(n.Summary)
	b.WriteByte(' ')
	b.WriteString(n.Path)
	for _, s := range n.Symbols {
		b.WriteByte(' ')
		b.WriteString(s.Name)
		if s.Summary != "" {
			b.WriteByte(' ')
			b.WriteString(s.Summary)
		}
	}
	haystack := strings.ToLower(b.String())

	score := 0
	for _, t := range tokens {
		if strings.Contains(haystack, t) {
			score++
		}
	}
	return score
}
