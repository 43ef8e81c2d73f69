package core

// Hand-rolled mus serializers for the snapshot records persisted by the
// storage layer. The types are few and stable, so serializers are written
// against the ord/varint combinators directly instead of being generated.
//
// Timestamps are encoded as Unix micro int64.

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// StringSliceMUS serializes []string.
var StringSliceMUS = ord.NewSliceSer[string](ord.String)

func marshalTime(t time.Time, bs []byte) (n int) {
	if t.IsZero() {
		return varint.Int64.Marshal(0, bs)
	}
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if us == 0 {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeTime(t time.Time) (size int) {
	if t.IsZero() {
		return varint.Int64.Size(0)
	}
	return varint.Int64.Size(t.UnixMicro())
}

func skipTime(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

// QueryRecordMUS serializes QueryRecord.
var QueryRecordMUS = queryRecordMUS{}

type queryRecordMUS struct{}

func (queryRecordMUS) Marshal(v QueryRecord, bs []byte) (n int) {
	n = StringSliceMUS.Marshal(v.Tags, bs)
	n += marshalTime(v.Timestamp, bs[n:])
	n += ord.String.Marshal(v.Type, bs[n:])
	return n
}

func (queryRecordMUS) Unmarshal(bs []byte) (v QueryRecord, n int, err error) {
	v.Tags, n, err = StringSliceMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.Timestamp, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Type, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (queryRecordMUS) Size(v QueryRecord) (size int) {
	size = StringSliceMUS.Size(v.Tags)
	size += sizeTime(v.Timestamp)
	size += ord.String.Size(v.Type)
	return size
}

func (queryRecordMUS) Skip(bs []byte) (n int, err error) {
	n, err = StringSliceMUS.Skip(bs)
	if err != nil {
		return n, err
	}
	var n1 int
	n1, err = skipTime(bs[n:])
	n += n1
	if err != nil {
		return n, err
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return n, err
}

// FeedbackRecordMUS serializes FeedbackRecord.
var FeedbackRecordMUS = feedbackRecordMUS{}

type feedbackRecordMUS struct{}

func (feedbackRecordMUS) Marshal(v FeedbackRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.Query, bs)
	n += ord.String.Marshal(v.ResultID, bs[n:])
	n += StringSliceMUS.Marshal(v.Tags, bs[n:])
	n += marshalTime(v.Timestamp, bs[n:])
	n += varint.Int.Marshal(int(v.Type), bs[n:])
	return n
}

func (feedbackRecordMUS) Unmarshal(bs []byte) (v FeedbackRecord, n int, err error) {
	v.Query, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.ResultID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Tags, n1, err = StringSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Timestamp, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	var feedbackType int
	feedbackType, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	v.Type = FeedbackType(feedbackType)
	return v, n, err
}

func (feedbackRecordMUS) Size(v FeedbackRecord) (size int) {
	size = ord.String.Size(v.Query)
	size += ord.String.Size(v.ResultID)
	size += StringSliceMUS.Size(v.Tags)
	size += sizeTime(v.Timestamp)
	size += varint.Int.Size(int(v.Type))
	return size
}

func (feedbackRecordMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, StringSliceMUS.Skip, skipTime, varint.Int.Skip,
	} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// TagLearningStatsMUS serializes TagLearningStats.
var TagLearningStatsMUS = tagLearningStatsMUS{}

type tagLearningStatsMUS struct{}

func (tagLearningStatsMUS) Marshal(v TagLearningStats, bs []byte) (n int) {
	n = varint.Int.Marshal(v.QueryCount, bs)
	n += varint.Int.Marshal(v.PositiveCount, bs[n:])
	n += varint.Int.Marshal(v.NegativeCount, bs[n:])
	n += marshalTime(v.LastQueryTime, bs[n:])
	n += varint.Float64.Marshal(v.LearnedWeight, bs[n:])
	return n
}

func (tagLearningStatsMUS) Unmarshal(bs []byte) (v TagLearningStats, n int, err error) {
	v.QueryCount, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.PositiveCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.NegativeCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.LastQueryTime, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.LearnedWeight, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (tagLearningStatsMUS) Size(v TagLearningStats) (size int) {
	size = varint.Int.Size(v.QueryCount)
	size += varint.Int.Size(v.PositiveCount)
	size += varint.Int.Size(v.NegativeCount)
	size += sizeTime(v.LastQueryTime)
	size += varint.Float64.Size(v.LearnedWeight)
	return size
}

func (tagLearningStatsMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for _, skip := range []func([]byte) (int, error){
		varint.Int.Skip, varint.Int.Skip, varint.Int.Skip, skipTime, varint.Float64.Skip,
	} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// SemanticSuggestionMUS serializes SemanticSuggestion.
var SemanticSuggestionMUS = semanticSuggestionMUS{}

type semanticSuggestionMUS struct{}

func (semanticSuggestionMUS) Marshal(v SemanticSuggestion, bs []byte) (n int) {
	n = ord.String.Marshal(v.SourceTag, bs)
	n += ord.String.Marshal(v.SuggestedTag, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	n += marshalTime(v.DiscoveredAt, bs[n:])
	n += ord.Bool.Marshal(v.Confirmed, bs[n:])
	return n
}

func (semanticSuggestionMUS) Unmarshal(bs []byte) (v SemanticSuggestion, n int, err error) {
	v.SourceTag, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.SuggestedTag, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.DiscoveredAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Confirmed, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (semanticSuggestionMUS) Size(v SemanticSuggestion) (size int) {
	size = ord.String.Size(v.SourceTag)
	size += ord.String.Size(v.SuggestedTag)
	size += varint.Float64.Size(v.Confidence)
	size += sizeTime(v.DiscoveredAt)
	size += ord.Bool.Size(v.Confirmed)
	return size
}

func (semanticSuggestionMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip, ord.String.Skip, varint.Float64.Skip, skipTime, ord.Bool.Skip,
	} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ResultSelectionStatsMUS serializes ResultSelectionStats.
var ResultSelectionStatsMUS = resultSelectionStatsMUS{}

type resultSelectionStatsMUS struct{}

func (resultSelectionStatsMUS) Marshal(v ResultSelectionStats, bs []byte) (n int) {
	n = varint.Int.Marshal(v.PositiveCount, bs)
	n += varint.Int.Marshal(v.NegativeCount, bs[n:])
	n += marshalTime(v.LastSelectedTime, bs[n:])
	n += StringSliceMUS.Marshal(v.AssociatedQueries, bs[n:])
	return n
}

func (resultSelectionStatsMUS) Unmarshal(bs []byte) (v ResultSelectionStats, n int, err error) {
	v.PositiveCount, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.NegativeCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.LastSelectedTime, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.AssociatedQueries, n1, err = StringSliceMUS.Unmarshal(bs[n:])
	n += n1
	return v, n, err
}

func (resultSelectionStatsMUS) Size(v ResultSelectionStats) (size int) {
	size = varint.Int.Size(v.PositiveCount)
	size += varint.Int.Size(v.NegativeCount)
	size += sizeTime(v.LastSelectedTime)
	size += StringSliceMUS.Size(v.AssociatedQueries)
	return size
}

func (resultSelectionStatsMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for _, skip := range []func([]byte) (int, error){
		varint.Int.Skip, varint.Int.Skip, skipTime, StringSliceMUS.Skip,
	} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Composite serializers for snapshot collections.
var (
	TagStatsMapMUS      = ord.NewMapSer[string, TagLearningStats](ord.String, TagLearningStatsMUS)
	ResultStatsMapMUS   = ord.NewMapSer[string, ResultSelectionStats](ord.String, ResultSelectionStatsMUS)
	QueryHistoryMUS     = ord.NewSliceSer[QueryRecord](QueryRecordMUS)
	FeedbackHistoryMUS  = ord.NewSliceSer[FeedbackRecord](FeedbackRecordMUS)
	SuggestionsSliceMUS = ord.NewSliceSer[SemanticSuggestion](SemanticSuggestionMUS)
)

// LearningSnapshotMUS serializes LearningSnapshot.
var LearningSnapshotMUS = learningSnapshotMUS{}

type learningSnapshotMUS struct{}

func (learningSnapshotMUS) Marshal(v LearningSnapshot, bs []byte) (n int) {
	n = TagStatsMapMUS.Marshal(v.TagStats, bs)
	n += QueryHistoryMUS.Marshal(v.QueryHistory, bs[n:])
	n += FeedbackHistoryMUS.Marshal(v.FeedbackHistory, bs[n:])
	n += SuggestionsSliceMUS.Marshal(v.Suggestions, bs[n:])
	n += ResultStatsMapMUS.Marshal(v.ResultStats, bs[n:])
	n += marshalTime(v.SavedAt, bs[n:])
	return n
}

func (learningSnapshotMUS) Unmarshal(bs []byte) (v LearningSnapshot, n int, err error) {
	v.TagStats, n, err = TagStatsMapMUS.Unmarshal(bs)
	if err != nil {
		return v, n, err
	}
	var n1 int
	v.QueryHistory, n1, err = QueryHistoryMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.FeedbackHistory, n1, err = FeedbackHistoryMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.Suggestions, n1, err = SuggestionsSliceMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.ResultStats, n1, err = ResultStatsMapMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return v, n, err
	}
	v.SavedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return v, n, err
}

func (learningSnapshotMUS) Size(v LearningSnapshot) (size int) {
	size = TagStatsMapMUS.Size(v.TagStats)
	size += QueryHistoryMUS.Size(v.QueryHistory)
	size += FeedbackHistoryMUS.Size(v.FeedbackHistory)
	size += SuggestionsSliceMUS.Size(v.Suggestions)
	size += ResultStatsMapMUS.Size(v.ResultStats)
	size += sizeTime(v.SavedAt)
	return size
}

func (learningSnapshotMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for _, skip := range []func([]byte) (int, error){
		TagStatsMapMUS.Skip, QueryHistoryMUS.Skip, FeedbackHistoryMUS.Skip,
		SuggestionsSliceMUS.Skip, ResultStatsMapMUS.Skip, skipTime,
	} {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
