package matrix

import (
	"encoding/json"
	"fmt"
)

// snapshot is the logical JSON schema for a persisted matrix.
// Relations hold [tagA, tagB, weight] triples for every unordered pair.
type snapshot struct {
	Tags           []string           `json:"tags"`
	Frequencies    map[string]float64 `json:"frequencies"`
	DocumentCounts map[string]int     `json:"documentCounts"`
	TotalDocuments int                `json:"totalDocuments"`
	Relations      [][]any            `json:"relations"`
}

// ToJSON serializes the full matrix state: tag set, per-tag frequency
// metadata and every pairwise weight. Buffered writes are flushed first.
func (m *Matrix) ToJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	snap := snapshot{
		Tags:           make([]string, 0, len(m.tags)),
		Frequencies:    make(map[string]float64, len(m.tags)),
		DocumentCounts: make(map[string]int, len(m.tags)),
		TotalDocuments: m.totalDocuments,
	}
	for tag, info := range m.tags {
		snap.Tags = append(snap.Tags, tag)
		if info.Frequency != 0 {
			snap.Frequencies[tag] = info.Frequency
		}
		if info.DocumentCount != 0 {
			snap.DocumentCounts[tag] = info.DocumentCount
		}
	}
	for tag, partners := range m.relations {
		for other, weight := range partners {
			if tag > other {
				continue // each unordered pair once; self-edges pass tag == other
			}
			snap.Relations = append(snap.Relations, []any{tag, other, weight})
		}
	}
	return json.Marshal(snap)
}

// FromJSON replaces the matrix state with a previously serialized snapshot.
// A malformed blob leaves the current state untouched.
func (m *Matrix) FromJSON(blob []byte) error {
	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	tags := make(map[string]*tagInfo, len(snap.Tags))
	relations := make(map[string]map[string]float64, len(snap.Tags))
	for _, tag := range snap.Tags {
		tags[tag] = &tagInfo{
			Frequency:     snap.Frequencies[tag],
			DocumentCount: snap.DocumentCounts[tag],
		}
		relations[tag] = make(map[string]float64)
	}

	for _, triple := range snap.Relations {
		if len(triple) != 3 {
			return fmt.Errorf("%w: relation triple has %d elements", ErrMalformedSnapshot, len(triple))
		}
		a, okA := triple[0].(string)
		b, okB := triple[1].(string)
		weight, okW := triple[2].(float64)
		if !okA || !okB || !okW {
			return fmt.Errorf("%w: relation triple has wrong element types", ErrMalformedSnapshot)
		}
		if _, ok := relations[a]; !ok {
			tags[a] = &tagInfo{}
			relations[a] = make(map[string]float64)
		}
		if _, ok := relations[b]; !ok {
			tags[b] = &tagInfo{}
			relations[b] = make(map[string]float64)
		}
		relations[a][b] = weight
		relations[b][a] = weight
	}

	m.mu.Lock()
	m.tags = tags
	m.relations = relations
	m.totalDocuments = snap.TotalDocuments
	m.pending = nil
	m.mu.Unlock()
	return nil
}
