package fusion

import (
	"sort"
	"strconv"
	"strings"

	"github.com/synaptiq/tagrank/core"
)

// DefaultRRFK is the rank-damping constant of Reciprocal Rank Fusion.
const DefaultRRFK = 60

// DedupeField selects the deduplication key for fusion.
type DedupeField string

const (
	// DedupeByID keys on the result identifier, falling back to content
	// hashing for results without one.
	DedupeByID DedupeField = "id"
	// DedupeByContent keys on a hash of the normalized content.
	DedupeByContent DedupeField = "content"
)

// RRFOptions configures weighted Reciprocal Rank Fusion.
type RRFOptions struct {
	// K is the rank-damping constant; non-positive values use DefaultRRFK.
	K int
	// SourceWeights scales each list's contributions. Missing sources
	// weigh 1.0.
	SourceWeights map[core.Source]float64
	// Deduplicate merges results sharing a key across lists.
	Deduplicate bool
	// DedupeField selects the key; defaults to DedupeByID.
	DedupeField DedupeField
}

// SourceList is one ranked backend result list entering fusion.
type SourceList struct {
	Source  core.Source
	Results []*core.Result
}

type fusedEntry struct {
	result   *core.Result
	fused    float64
	metadata map[string]string
	order    int
}

// WeightedRRF fuses ranked lists: every occurrence of a result contributes
// weight/(k+rank) with 1-based ranks, summed across lists after
// deduplication. The merged result keeps the representative with the
// highest backend score and a first-wins union of metadata. Ordering is
// fused-score descending with ties broken by first appearance, so the
// output is deterministic for fixed inputs.
//
// The input results are not mutated; fused entries are copies whose Score
// and BaseScore hold the fused value.
func WeightedRRF(lists []SourceList, opts RRFOptions) []*core.Result {
	k := opts.K
	if k <= 0 {
		k = DefaultRRFK
	}

	entries := make(map[string]*fusedEntry)
	var order []string

	for _, list := range lists {
		weight := 1.0
		if w, ok := opts.SourceWeights[list.Source]; ok && w > 0 {
			weight = w
		}
		for rank, result := range list.Results {
			if result == nil {
				continue
			}
			key := dedupeKey(result, list.Source, rank, opts)
			contribution := weight / float64(k+rank+1)

			entry, ok := entries[key]
			if !ok {
				entry = &fusedEntry{
					result:   result,
					metadata: cloneMetadata(result.Metadata),
					order:    len(order),
				}
				entries[key] = entry
				order = append(order, key)
			} else {
				if result.Score > entry.result.Score {
					entry.result = result
				}
				for name, value := range result.Metadata {
					if _, exists := entry.metadata[name]; !exists {
						entry.metadata[name] = value
					}
				}
			}
			entry.fused += contribution
		}
	}

	fused := make([]*core.Result, 0, len(order))
	for _, key := range order {
		entry := entries[key]
		merged := *entry.result
		merged.Score = entry.fused
		merged.BaseScore = entry.fused
		merged.Metadata = entry.metadata
		fused = append(fused, &merged)
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}

func dedupeKey(result *core.Result, source core.Source, rank int, opts RRFOptions) string {
	if !opts.Deduplicate {
		// Unique key per occurrence: nothing merges.
		return string(source) + "#" + strconv.Itoa(rank)
	}
	if opts.DedupeField == DedupeByContent || result.ID == "" {
		normalized := strings.ToLower(strings.TrimSpace(result.Content))
		return "c:" + strconv.FormatUint(uint64(core.IDFromContent(normalized)), 16)
	}
	return "i:" + result.ID
}

func cloneMetadata(metadata map[string]string) map[string]string {
	cloned := make(map[string]string, len(metadata))
	for name, value := range metadata {
		cloned[name] = value
	}
	return cloned
}

// NormalizeScores rescales scores to [0, 1] by dividing by the maximum,
// writing both Score and BaseScore. Raw RRF sums are tiny (about 1/k), so
// without this step any absolute score threshold downstream would be
// meaningless. Dividing by the maximum preserves the relative proportions
// between results, unlike min-max which pins the last result to zero.
func NormalizeScores(results []*core.Result) {
	max := 0.0
	for _, result := range results {
		if result.Score > max {
			max = result.Score
		}
	}
	if max <= 0 {
		return
	}
	for _, result := range results {
		result.Score /= max
		result.BaseScore = result.Score
	}
}
