package matrix

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/synaptiq/tagrank/core"
)

const (
	// selfEdgeWeight registers a tag with no co-occurrence partner yet.
	selfEdgeWeight = 0.1

	// flushThreshold triggers an opportunistic merge of buffered writes.
	flushThreshold = 256
)

// tagInfo holds per-tag metadata.
type tagInfo struct {
	Frequency     float64
	DocumentCount int
}

// pendingRelation is one buffered edge write.
type pendingRelation struct {
	a, b   string
	weight float64
}

// Related is a co-occurring tag with its association weight.
type Related struct {
	Tag    string
	Weight float64
}

// Association is a co-occurring tag ranked by pointwise mutual information.
type Association struct {
	Tag       string
	PMI       float64
	Weight    float64
	Frequency float64
}

// Stats summarizes matrix cardinalities.
type Stats struct {
	TagCount       int
	RelationCount  int
	TotalDocuments int
}

// Matrix is a symmetric tag co-occurrence matrix with per-tag metadata.
type Matrix struct {
	mu             sync.RWMutex
	tags           map[string]*tagInfo
	relations      map[string]map[string]float64
	totalDocuments int
	pending        []pendingRelation
	onMutate       func()
	logger         *slog.Logger
}

// Option configures a Matrix.
type Option func(*Matrix)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matrix) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// WithMutateHook installs a callback invoked after every mutating operation.
// Used by the boost engine's debounced persistence.
func WithMutateHook(hook func()) Option {
	return func(m *Matrix) {
		m.onMutate = hook
	}
}

// New creates an empty co-occurrence matrix.
func New(opts ...Option) *Matrix {
	m := &Matrix{
		tags:      make(map[string]*tagInfo),
		relations: make(map[string]map[string]float64),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetMutateHook replaces the mutation callback. Resolved once by the
// composition root after both objects exist.
func (m *Matrix) SetMutateHook(hook func()) {
	m.mu.Lock()
	m.onMutate = hook
	m.mu.Unlock()
}

func (m *Matrix) markMutated() {
	if m.onMutate != nil {
		m.onMutate()
	}
}

// AddRelation records or accumulates a symmetric edge between two tags.
// Tags are normalized; the call is a no-op if the tags are equal or either
// normalizes to the empty string. Both tags' frequencies accumulate weight.
func (m *Matrix) AddRelation(a, b string, weight float64) {
	a, b = core.NormalizeTag(a), core.NormalizeTag(b)
	if a == "" || b == "" || a == b {
		return
	}
	if weight <= 0 {
		weight = 1
	}

	m.mu.Lock()
	m.pending = append(m.pending, pendingRelation{a: a, b: b, weight: weight})
	if len(m.pending) >= flushThreshold {
		m.flushLocked()
	}
	hook := m.onMutate
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// RegisterTag makes a tag discoverable before it has co-occurrence partners
// by recording a low-weight self-edge. Empty tags are rejected.
func (m *Matrix) RegisterTag(tag string) error {
	tag = core.NormalizeTag(tag)
	if tag == "" {
		return ErrEmptyTag
	}

	m.mu.Lock()
	m.ensureTagLocked(tag)
	if _, ok := m.relations[tag][tag]; !ok {
		m.relations[tag][tag] = selfEdgeWeight
	}
	hook := m.onMutate
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

// BuildFromDocuments builds co-occurrence edges from a batch of documents.
// For each document, every unordered pair of its deduplicated tags gains
// weight 1, and every tag's frequency and document count increment.
// Returns the number of documents processed.
func (m *Matrix) BuildFromDocuments(docs []core.Document) int {
	m.mu.Lock()
	processed := 0
	for _, doc := range docs {
		tags := core.NormalizeTags(doc.Tags)
		for _, tag := range tags {
			info := m.ensureTagLocked(tag)
			info.Frequency++
			info.DocumentCount++
		}
		for i := 0; i < len(tags); i++ {
			for j := i + 1; j < len(tags); j++ {
				m.addEdgeLocked(tags[i], tags[j], 1)
			}
		}
		m.totalDocuments++
		processed++
	}
	hook := m.onMutate
	m.mu.Unlock()

	m.logger.Debug("matrix built from documents", "documents", processed)
	if hook != nil && processed > 0 {
		hook()
	}
	return processed
}

// ensureTagLocked returns the tagInfo for tag, creating it if absent.
func (m *Matrix) ensureTagLocked(tag string) *tagInfo {
	info, ok := m.tags[tag]
	if !ok {
		info = &tagInfo{}
		m.tags[tag] = info
	}
	if _, ok := m.relations[tag]; !ok {
		m.relations[tag] = make(map[string]float64)
	}
	return info
}

// addEdgeLocked accumulates a symmetric edge. Frequencies are not touched.
func (m *Matrix) addEdgeLocked(a, b string, weight float64) {
	m.ensureTagLocked(a)
	m.ensureTagLocked(b)
	m.relations[a][b] += weight
	m.relations[b][a] += weight
}

// flushLocked merges buffered relation writes into the adjacency maps.
func (m *Matrix) flushLocked() {
	for _, rel := range m.pending {
		m.addEdgeLocked(rel.a, rel.b, rel.weight)
		m.tags[rel.a].Frequency += rel.weight
		m.tags[rel.b].Frequency += rel.weight
	}
	m.pending = m.pending[:0]
}

// Flush drains buffered writes. Reads call this implicitly.
func (m *Matrix) Flush() {
	m.mu.Lock()
	m.flushLocked()
	m.mu.Unlock()
}

// GetWeight returns the symmetric edge weight between two tags, 0 if absent.
func (m *Matrix) GetWeight(a, b string) float64 {
	a, b = core.NormalizeTag(a), core.NormalizeTag(b)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	partners, ok := m.relations[a]
	if !ok {
		return 0
	}
	return partners[b]
}

// GetRelatedTags returns co-occurring tags sorted by weight descending,
// filtered to weight >= minWeight and truncated to topK (default 10).
// The registration self-edge is never reported.
func (m *Matrix) GetRelatedTags(tag string, topK int, minWeight float64) []Related {
	tag = core.NormalizeTag(tag)
	if topK <= 0 {
		topK = 10
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	partners, ok := m.relations[tag]
	if !ok {
		return nil
	}

	related := make([]Related, 0, len(partners))
	for other, weight := range partners {
		if other == tag || weight < minWeight {
			continue
		}
		related = append(related, Related{Tag: other, Weight: weight})
	}
	sort.Slice(related, func(i, j int) bool {
		if related[i].Weight != related[j].Weight {
			return related[i].Weight > related[j].Weight
		}
		return related[i].Tag < related[j].Tag
	})
	if len(related) > topK {
		related = related[:topK]
	}
	return related
}

// Frequency returns the accumulated frequency of a tag, 0 if unknown.
func (m *Matrix) Frequency(tag string) float64 {
	tag = core.NormalizeTag(tag)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	info, ok := m.tags[tag]
	if !ok {
		return 0
	}
	return info.Frequency
}

// PartnerCount returns how many distinct tags co-occur with tag.
// The registration self-edge does not count.
func (m *Matrix) PartnerCount(tag string) int {
	tag = core.NormalizeTag(tag)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	partners, ok := m.relations[tag]
	if !ok {
		return 0
	}
	count := len(partners)
	if _, ok := partners[tag]; ok {
		count--
	}
	return count
}

// TotalDocuments returns the number of documents seen by BuildFromDocuments.
func (m *Matrix) TotalDocuments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDocuments
}

// GetAllTags returns every known tag, sorted.
func (m *Matrix) GetAllTags() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	tags := make([]string, 0, len(m.tags))
	for tag := range m.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Size returns the number of known tags.
func (m *Matrix) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()
	return len(m.tags)
}

// RelationCount returns the number of unordered tag pairs with an edge,
// excluding registration self-edges.
func (m *Matrix) RelationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	count := 0
	for tag, partners := range m.relations {
		for other := range partners {
			if tag < other {
				count++
			}
		}
	}
	return count
}

// Stats returns matrix cardinalities in one call.
func (m *Matrix) Stats() Stats {
	return Stats{
		TagCount:       m.Size(),
		RelationCount:  m.RelationCount(),
		TotalDocuments: m.TotalDocuments(),
	}
}

// PMI computes the pointwise mutual information between two tags from their
// co-occurrence weight and frequencies. Returns 0 when either tag is unknown
// or no edge exists.
func (m *Matrix) PMI(a, b string) float64 {
	a, b = core.NormalizeTag(a), core.NormalizeTag(b)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	return m.pmiLocked(a, b)
}

func (m *Matrix) pmiLocked(a, b string) float64 {
	total := m.totalFrequencyLocked()
	if total == 0 {
		return 0
	}
	infoA, okA := m.tags[a]
	infoB, okB := m.tags[b]
	if !okA || !okB || infoA.Frequency == 0 || infoB.Frequency == 0 {
		return 0
	}
	weight := m.relations[a][b]
	if weight == 0 {
		return 0
	}
	pab := weight / total
	pa := infoA.Frequency / total
	pb := infoB.Frequency / total
	return math.Log(pab / (pa * pb))
}

func (m *Matrix) totalFrequencyLocked() float64 {
	total := 0.0
	for _, info := range m.tags {
		total += info.Frequency
	}
	return total
}

// Associations returns co-occurring tags ranked by PMI descending.
func (m *Matrix) Associations(tag string, topK int) []Association {
	tag = core.NormalizeTag(tag)
	if topK <= 0 {
		topK = 10
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushLocked()

	partners, ok := m.relations[tag]
	if !ok {
		return nil
	}

	associations := make([]Association, 0, len(partners))
	for other, weight := range partners {
		if other == tag {
			continue
		}
		info := m.tags[other]
		associations = append(associations, Association{
			Tag:       other,
			PMI:       m.pmiLocked(tag, other),
			Weight:    weight,
			Frequency: info.Frequency,
		})
	}
	sort.Slice(associations, func(i, j int) bool {
		if associations[i].PMI != associations[j].PMI {
			return associations[i].PMI > associations[j].PMI
		}
		return associations[i].Tag < associations[j].Tag
	})
	if len(associations) > topK {
		associations = associations[:topK]
	}
	return associations
}

// Clear resets all matrix state.
func (m *Matrix) Clear() {
	m.mu.Lock()
	m.tags = make(map[string]*tagInfo)
	m.relations = make(map[string]map[string]float64)
	m.totalDocuments = 0
	m.pending = nil
	hook := m.onMutate
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
}
