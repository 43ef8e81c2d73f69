package matrix

import (
	"math"
	"sort"

	"github.com/synaptiq/tagrank/core"
)

// DefaultExpansionDecay is the per-hop weight decay for ExpandTags.
const DefaultExpansionDecay = 0.7

// ExpandTags performs breadth-first multi-hop expansion from seed tags.
//
// Hop 0 is the seed set. At each hop h in 1..depth, every frontier tag's
// related tags accumulate weight * decay^h into a best-score-per-tag map;
// a tag reached over multiple paths keeps its maximum score, not the sum.
// Seeds never appear in the result. Expansion terminates after depth hops
// or as soon as a hop discovers no new tags.
//
// A depth of 0 returns nothing. A non-positive decay falls back to the
// default of 0.7.
func (m *Matrix) ExpandTags(seeds []string, depth int, decay float64) []Related {
	seeds = core.NormalizeTags(seeds)
	if len(seeds) == 0 || depth <= 0 {
		return nil
	}
	if decay <= 0 {
		decay = DefaultExpansionDecay
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	seedSet := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		seedSet[seed] = true
	}

	best := make(map[string]float64)
	frontier := seeds

	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		decayMult := math.Pow(decay, float64(hop))
		var next []string

		for _, tag := range frontier {
			for other, weight := range m.relations[tag] {
				if other == tag || seedSet[other] {
					continue
				}
				score := weight * decayMult
				prev, seen := best[other]
				if !seen {
					next = append(next, other)
				}
				if score > prev || !seen {
					best[other] = score
				}
			}
		}
		frontier = next
	}

	expanded := make([]Related, 0, len(best))
	for tag, score := range best {
		expanded = append(expanded, Related{Tag: tag, Weight: score})
	}
	sort.Slice(expanded, func(i, j int) bool {
		if expanded[i].Weight != expanded[j].Weight {
			return expanded[i].Weight > expanded[j].Weight
		}
		return expanded[i].Tag < expanded[j].Tag
	})
	return expanded
}
