package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for fused results and documents.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// NormalizeTag lower-cases and trims a tag. Returns "" for blank input.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes every tag, dropping empties and duplicates.
// Order of first occurrence is preserved.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := NormalizeTag(tag)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

// Document is a (document, tags) pair used to build the co-occurrence matrix.
type Document struct {
	ID   string
	Tags []string
}

// Source identifies a knowledge backend category.
type Source string

const (
	// SourceKnowledge is the long-term knowledge base backend.
	SourceKnowledge Source = "knowledge"
	// SourceDiary is the time-indexed diary/journal backend.
	SourceDiary Source = "diary"
	// SourceTag is the tag-indexed backend.
	SourceTag Source = "tag"
)

// Mode selects the retrieval strategy a backend should use.
type Mode string

const (
	ModeRAG          Mode = "rag"
	ModeThresholdRAG Mode = "threshold_rag"
	ModeFulltext     Mode = "fulltext"
)

// Intent is the classified purpose of a query.
type Intent string

const (
	IntentSearch     Intent = "search"
	IntentRecall     Intent = "recall"
	IntentSummary    Intent = "summary"
	IntentComparison Intent = "comparison"
)

// Result is a single search result flowing through fusion and boosting.
// BaseScore holds the immutable pre-boost relevance; Score is the display
// score and is always recomputed from BaseScore, never from itself.
type Result struct {
	ID        string
	Content   string
	Score     float64
	BaseScore float64
	Source    Source
	Metadata  map[string]string
	TagBoost  *TagBoostResult // populated when tag boosting touched this result
}

// SpikeDetail records the per-tag contribution to a spike score.
type SpikeDetail struct {
	Tag        string
	Weight     float64
	GlobalFreq float64
	Score      float64
}

// TagBoostResult explains how a result's score was boosted.
// Invariant: BoostedScore is in [OriginalScore, 1.0].
type TagBoostResult struct {
	OriginalScore float64
	BoostedScore  float64
	MatchedTags   []string
	ExpansionTags []string
	BoostFactor   float64
	TagMatchScore float64
	SpikeDetails  []SpikeDetail
	DynamicAlpha  float64
	DynamicBeta   float64
}

// QueryRecord is one entry of the learning engine's query history.
type QueryRecord struct {
	Tags      []string
	Timestamp time.Time
	Type      string
}

// FeedbackType classifies explicit user feedback on a result.
type FeedbackType int

const (
	// FeedbackPositive marks a result the user selected or endorsed.
	FeedbackPositive FeedbackType = iota + 1
	// FeedbackNegative marks a result the user rejected.
	FeedbackNegative
)

// FeedbackRecord is one entry of the learning engine's feedback history.
type FeedbackRecord struct {
	Query     string
	ResultID  string
	Tags      []string
	Timestamp time.Time
	Type      FeedbackType
}

// TagLearningStats tracks learned relevance for a single tag.
// Invariant: LearnedWeight is in [0.5, 2.0] at all observation points.
type TagLearningStats struct {
	QueryCount    int
	PositiveCount int
	NegativeCount int
	LastQueryTime time.Time
	LearnedWeight float64
}

// SemanticSuggestion is a mined tag association awaiting confirmation.
// At most one suggestion exists per unordered (SourceTag, SuggestedTag) pair.
type SemanticSuggestion struct {
	SourceTag    string
	SuggestedTag string
	Confidence   float64 // in [0, 1]
	DiscoveredAt time.Time
	Confirmed    bool
}

// MaxAssociatedQueries bounds ResultSelectionStats.AssociatedQueries.
const MaxAssociatedQueries = 10

// ResultSelectionStats tracks feedback per result.
// AssociatedQueries keeps at most MaxAssociatedQueries entries, oldest evicted first.
type ResultSelectionStats struct {
	PositiveCount     int
	NegativeCount     int
	LastSelectedTime  time.Time
	AssociatedQueries []string
}

// LearningSnapshot is the persisted state of the self-learning engine.
type LearningSnapshot struct {
	TagStats        map[string]TagLearningStats
	QueryHistory    []QueryRecord
	FeedbackHistory []FeedbackRecord
	Suggestions     []SemanticSuggestion
	ResultStats     map[string]ResultSelectionStats
	SavedAt         time.Time
}

// QueryAnalysis is the pure analysis of a free-text query.
type QueryAnalysis struct {
	Keywords    []string
	Tags        []string
	TimeRelated bool
	IsQuestion  bool
	Intent      Intent
}

// TimeFilter is a half-open [Start, End) window over document timestamps.
type TimeFilter struct {
	Start time.Time
	End   time.Time
}

// RetrievalPlan is the planner's output consumed by the fusion orchestrator.
type RetrievalPlan struct {
	Sources     []Source
	SourceTopK  map[Source]int
	Mode        Mode
	UseTagMemo  bool
	UseRRF      bool
	UseReranker bool
	TimeFilter  *TimeFilter
	Analysis    QueryAnalysis
}
