package boost

import (
	"log/slog"
	"math"

	"github.com/synaptiq/tagrank/core"
	"github.com/synaptiq/tagrank/matrix"
)

// Config holds the tuning parameters of the spike formula.
type Config struct {
	// AlphaMin and AlphaMax bound the dynamic spike exponent.
	AlphaMin float64
	AlphaMax float64
	// BetaBase is the base damping offset; the dynamic value grows toward
	// BetaBase+3 for unfamiliar queries.
	BetaBase float64
	// MaxExpansionDepth bounds multi-hop tag expansion.
	MaxExpansionDepth int
	// ExpansionDecay is the per-hop decay for tag expansion.
	ExpansionDecay float64
}

// DefaultConfig returns the standard spike parameters.
func DefaultConfig() Config {
	return Config{
		AlphaMin:          1.5,
		AlphaMax:          3.5,
		BetaBase:          2.0,
		MaxExpansionDepth: 2,
		ExpansionDecay:    matrix.DefaultExpansionDecay,
	}
}

// LearnedWeights supplies per-tag multipliers from the self-learning engine.
// Implementations return 1 for unknown tags.
type LearnedWeights interface {
	LearnedWeight(tag string) float64
}

// Engine re-scores search results using tag co-occurrence evidence.
type Engine struct {
	matrix    *matrix.Matrix
	cfg       Config
	blacklist *Blacklist
	saver     *Saver
	learned   LearnedWeights
	vectors   TagVectors
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig overrides the spike parameters.
func WithConfig(cfg Config) Option {
	return func(e *Engine) error {
		if cfg.AlphaMin <= 0 {
			cfg.AlphaMin = 1.5
		}
		if cfg.AlphaMax < cfg.AlphaMin {
			cfg.AlphaMax = cfg.AlphaMin
		}
		if cfg.BetaBase <= 0 {
			cfg.BetaBase = 2.0
		}
		if cfg.MaxExpansionDepth <= 0 {
			cfg.MaxExpansionDepth = 2
		}
		if cfg.ExpansionDecay <= 0 {
			cfg.ExpansionDecay = matrix.DefaultExpansionDecay
		}
		e.cfg = cfg
		return nil
	}
}

// WithBlacklist sets the registration blacklist.
func WithBlacklist(blacklist *Blacklist) Option {
	return func(e *Engine) error {
		if blacklist != nil {
			e.blacklist = blacklist
		}
		return nil
	}
}

// WithSaver attaches a debounced saver; every matrix mutation marks it.
func WithSaver(saver *Saver) Option {
	return func(e *Engine) error {
		e.saver = saver
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a tag boost engine over a co-occurrence matrix.
func NewEngine(m *matrix.Matrix, opts ...Option) (*Engine, error) {
	if m == nil {
		return nil, ErrMatrixRequired
	}

	e := &Engine{
		matrix:    m,
		cfg:       DefaultConfig(),
		blacklist: NewBlacklist(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.saver != nil {
		m.SetMutateHook(e.saver.Mark)
	}
	return e, nil
}

// SetLearnedWeights injects the learned-weight source. Resolved once by the
// composition root after both engines exist.
func (e *Engine) SetLearnedWeights(learned LearnedWeights) {
	e.learned = learned
}

// Matrix exposes the underlying co-occurrence matrix.
func (e *Engine) Matrix() *matrix.Matrix {
	return e.matrix
}

// Blacklist exposes the registration blacklist.
func (e *Engine) Blacklist() *Blacklist {
	return e.blacklist
}

// RegisterTag registers a standalone tag unless it is blacklisted.
func (e *Engine) RegisterTag(tag string) error {
	if e.blacklist.Contains(tag) {
		return ErrBlacklistedTag
	}
	return e.matrix.RegisterTag(tag)
}

// RegisterTags registers a batch of tags, skipping blacklisted and empty
// entries. Returns the number of tags registered.
func (e *Engine) RegisterTags(tags []string) int {
	registered := 0
	for _, tag := range tags {
		if err := e.RegisterTag(tag); err != nil {
			e.logger.Debug("tag registration skipped", "tag", tag, "err", err)
			continue
		}
		registered++
	}
	return registered
}

// FilterBlacklistedTags removes blacklisted entries from a tag list.
func (e *Engine) FilterBlacklistedTags(tags []string) []string {
	return e.blacklist.Filter(tags)
}

// ForceSave drains any pending debounced flush and writes synchronously.
// Intended for shutdown.
func (e *Engine) ForceSave() error {
	if e.saver == nil {
		return nil
	}
	return e.saver.Flush()
}

// learnedWeight returns the per-tag multiplier, 1 when no source is wired.
func (e *Engine) learnedWeight(tag string) float64 {
	if e.learned == nil {
		return 1
	}
	w := e.learned.LearnedWeight(tag)
	if w <= 0 {
		return 1
	}
	return w
}

// dynamicParams computes the query-dependent Alpha and Beta from the mean
// familiarity of the query tags.
func (e *Engine) dynamicParams(queryTags []string) (alpha, beta float64) {
	totalDocs := float64(e.matrix.TotalDocuments())
	avgScore := 0.0
	if len(queryTags) > 0 && totalDocs > 0 {
		sum := 0.0
		for _, tag := range queryTags {
			sum += e.matrix.Frequency(tag) / totalDocs
		}
		avgScore = sum / float64(len(queryTags))
	}

	alpha = e.cfg.AlphaMin + (e.cfg.AlphaMax-e.cfg.AlphaMin)*avgScore
	alpha = math.Min(math.Max(alpha, e.cfg.AlphaMin), e.cfg.AlphaMax)
	beta = e.cfg.BetaBase + (1-avgScore)*3
	return alpha, beta
}

// spikeScore computes coWeight^alpha / ln(globalFreq+beta) with the
// degenerate-denominator fallback. Non-finite results clamp to 0.
func spikeScore(coWeight, globalFreq, alpha, beta float64) float64 {
	logicStrength := math.Pow(coWeight, alpha)
	noisePenalty := math.Log(globalFreq + beta)
	score := logicStrength
	if noisePenalty > 0 {
		score = logicStrength / noisePenalty
	}
	return core.ClampScore(score)
}

// ApplyTagBoost re-scores results against the query tags. The boosted score
// is always computed from each result's immutable base score, so repeated
// application cannot compound. Results without any direct or expansion match
// pass through unchanged.
func (e *Engine) ApplyTagBoost(query string, tags []string, results []*core.Result) []*core.Result {
	queryTags := core.NormalizeTags(tags)
	if len(queryTags) == 0 {
		queryTags = ExtractTagsFromQuery(query)
	}
	if len(queryTags) == 0 || len(results) == 0 {
		return results
	}

	expanded := e.matrix.ExpandTags(queryTags, e.cfg.MaxExpansionDepth, e.cfg.ExpansionDecay)
	expansionWeights := make(map[string]float64, len(expanded))
	for _, rel := range expanded {
		expansionWeights[rel.Tag] = rel.Weight
	}

	alpha, beta := e.dynamicParams(queryTags)

	boosted := 0
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.BaseScore == 0 && result.Score != 0 {
			result.BaseScore = result.Score
		}

		contentTags := make(map[string]bool)
		for _, tag := range ExtractTagsFromContent(result.Content) {
			contentTags[tag] = true
		}

		var (
			matchedTags   []string
			expansionTags []string
			spikeDetails  []core.SpikeDetail
			totalSpike    float64
		)

		for _, tag := range queryTags {
			if !contentTags[tag] {
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
			score := spikeScore(coWeight, globalFreq, alpha, beta)
			totalSpike += score
			matchedTags = append(matchedTags, tag)
			spikeDetails = append(spikeDetails, core.SpikeDetail{
				Tag: tag, Weight: coWeight, GlobalFreq: globalFreq, Score: score,
			})
		}

		// Expanded tags exclude the seeds, so they never overlap matchedTags.
		for _, rel := range expanded {
			if !contentTags[rel.Tag] {
				continue
			}
			coWeight := rel.Weight * 0.5
			globalFreq := float64(e.matrix.PartnerCount(rel.Tag))
			if globalFreq == 0 {
				globalFreq = 1
			}
			score := spikeScore(coWeight, globalFreq, alpha, beta) * 0.5
			totalSpike += score
			expansionTags = append(expansionTags, rel.Tag)
			spikeDetails = append(spikeDetails, core.SpikeDetail{
				Tag: rel.Tag, Weight: coWeight, GlobalFreq: globalFreq, Score: score,
			})
		}

		if len(matchedTags) == 0 && len(expansionTags) == 0 {
			continue
		}

		normalizedSpike := totalSpike / (totalSpike + beta*2)
		boostFactor := 1 + normalizedSpike*0.5
		boostedScore := math.Min(result.BaseScore*boostFactor, 1.0)

		result.TagBoost = &core.TagBoostResult{
			OriginalScore: result.BaseScore,
			BoostedScore:  boostedScore,
			MatchedTags:   matchedTags,
			ExpansionTags: expansionTags,
			BoostFactor:   boostFactor,
			TagMatchScore: totalSpike,
			SpikeDetails:  spikeDetails,
			DynamicAlpha:  alpha,
			DynamicBeta:   beta,
		}
		result.Score = boostedScore
		boosted++
	}

	e.logger.Debug("tag boost applied",
		"queryTags", len(queryTags), "results", len(results), "boosted", boosted)
	return results
}
