package boost

import (
	"math"
)

// DefaultVectorBoost is the default blend ratio toward the tag centroid.
const DefaultVectorBoost = 0.3

// TagVectors supplies cached embeddings for tags. Tags without a cached
// embedding report ok=false and are skipped.
type TagVectors interface {
	TagVector(tag string) (vector []float32, ok bool)
}

// SetTagVectors injects the tag embedding cache used by ComputeVectorBoost.
func (e *Engine) SetTagVectors(vectors TagVectors) {
	e.vectors = vectors
}

// ComputeVectorBoost blends a query vector toward the weighted centroid of
// the query tags' cached embeddings. Each tag's weight is its spike score,
// including the learned-weight multiplier when one is wired. Degenerate
// cases (no tag vectors wired, no matched embeddings, dimension mismatch,
// zero magnitude) return the original vector unchanged.
func (e *Engine) ComputeVectorBoost(vector []float32, queryTags []string, tagBoost float64) []float32 {
	if e.vectors == nil || len(vector) == 0 || len(queryTags) == 0 {
		return vector
	}
	if tagBoost <= 0 || tagBoost > 1 {
		tagBoost = DefaultVectorBoost
	}

	alpha, beta := e.dynamicParams(queryTags)

	centroid := make([]float64, len(vector))
	weightSum := 0.0
	for _, tag := range queryTags {
		embedding, ok := e.vectors.TagVector(tag)
		if !ok || len(embedding) != len(vector) {
			continue
		}
		coWeight := e.matrix.Frequency(tag)
		if coWeight == 0 {
			coWeight = 1
		}
		coWeight *= e.learnedWeight(tag)
		globalFreq := float64(e.matrix.PartnerCount(tag))
		if globalFreq == 0 {
			globalFreq = 1
		}
		weight := spikeScore(coWeight, globalFreq, alpha, beta)
		if weight <= 0 {
			continue
		}
		for i, v := range embedding {
			centroid[i] += float64(v) * weight
		}
		weightSum += weight
	}

	if weightSum == 0 {
		return vector
	}
	for i := range centroid {
		centroid[i] /= weightSum
	}
	if !normalize(centroid) {
		return vector
	}

	blended := make([]float64, len(vector))
	for i, v := range vector {
		blended[i] = (1-tagBoost)*float64(v) + tagBoost*centroid[i]
	}
	if !normalize(blended) {
		return vector
	}

	out := make([]float32, len(blended))
	for i, v := range blended {
		out[i] = float32(v)
	}
	return out
}

// normalize scales v to unit length in place. Returns false when the
// magnitude is zero or non-finite.
func normalize(v []float64) bool {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return false
	}
	for i := range v {
		v[i] /= norm
	}
	return true
}
