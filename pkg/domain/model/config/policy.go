package config

import (
	"github.com/m-mizutani/goerr/v2"
)

// Policy holds every tunable constant of the memory engine. The defaults
// reproduce the empirically tuned values of the original deployment; they
// have no documented derivation and should be recalibrated against a real
// corpus before changing them in production.
type Policy struct {
	Context   ContextPolicy   `toml:"context"`
	Dedup     DedupPolicy     `toml:"dedup"`
	Retrieval RetrievalPolicy `toml:"retrieval"`
	Resolve   ResolvePolicy   `toml:"resolve"`
}

// ContextPolicy controls how much prior history is assembled into the
// extractor context.
type ContextPolicy struct {
	// SimilarLimit is the number of memories fetched by vector similarity
	// (topical relevance, e.g. "budget" facts for a budget update).
	SimilarLimit int `toml:"similar_limit"`
	// RecentLimit is the number of most recent memories fetched regardless
	// of similarity, needed to resolve references like "add 10 to that".
	RecentLimit int `toml:"recent_limit"`
}

// DedupPolicy controls duplicate rejection of extracted candidates.
type DedupPolicy struct {
	// DistanceThreshold: a candidate whose nearest existing memory sits
	// closer than this cosine distance is discarded as a duplicate.
	DistanceThreshold float64 `toml:"distance_threshold"`
	// CorrectionKeywords bypass dedup entirely when any tag contains one of
	// them (case-insensitive substring). State updates are near-duplicates
	// in vector space and must not be silently dropped.
	CorrectionKeywords []string `toml:"correction_keywords"`
}

// RetrievalPolicy controls hybrid (vector + lexical) recall.
type RetrievalPolicy struct {
	// VectorLimit is the size of the primary vector result set.
	VectorLimit int `toml:"vector_limit"`
	// ResultLimit caps the merged result set before re-sorting by recency.
	ResultLimit int `toml:"result_limit"`
	// MatchesPerKeyword caps lexical tag matches contributed per keyword.
	MatchesPerKeyword int `toml:"matches_per_keyword"`
	// MinKeywordRunes drops query tokens shorter than this.
	MinKeywordRunes int `toml:"min_keyword_runes"`
	// ShortKeywordMaxRunes splits tokens into short/long threshold classes.
	ShortKeywordMaxRunes int `toml:"short_keyword_max_runes"`
	// ShortKeywordThreshold is loose to tolerate typos and suffix variation
	// on short tokens; LongKeywordThreshold is strict to avoid noise.
	ShortKeywordThreshold float64 `toml:"short_keyword_threshold"`
	LongKeywordThreshold  float64 `toml:"long_keyword_threshold"`
	// Stopwords are dropped from queries before lexical matching. Data, not
	// code: extend per language/domain without touching the algorithm.
	Stopwords []string `toml:"stopwords"`
}

// ResolvePolicy controls deletion by text fragment.
type ResolvePolicy struct {
	// Safety gate: purely numeric fragments shorter than MinNumericRunes
	// and other fragments shorter than MinTextRunes are rejected ("500" or
	// "ve" are too generic to identify a single memory).
	MinNumericRunes int `toml:"min_numeric_runes"`
	MinTextRunes    int `toml:"min_text_runes"`
	// FuzzyMinRunes gates the fuzzy fallback; FuzzyThreshold is the minimum
	// trigram similarity for a fallback match.
	FuzzyMinRunes  int     `toml:"fuzzy_min_runes"`
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`
	// PreviewRunes is the length of the deleted-text confirmation snippet.
	PreviewRunes int `toml:"preview_runes"`
}

// DefaultPolicy returns the policy with the original tuned values and the
// built-in multilingual keyword/stopword sets (Turkish + English).
func DefaultPolicy() *Policy {
	return &Policy{
		Context: ContextPolicy{
			SimilarLimit: 15,
			RecentLimit:  10,
		},
		Dedup: DedupPolicy{
			DistanceThreshold: 0.05,
			CorrectionKeywords: []string{
				"correction", "change", "update",
				"düzeltme", "degisiklik", "yenileme", "revizyon", "guncelleme",
				"status", "durum", "pending", "beklemede", "draft", "taslak",
			},
		},
		Retrieval: RetrievalPolicy{
			VectorLimit:           20,
			ResultLimit:           20,
			MatchesPerKeyword:     2,
			MinKeywordRunes:       4,
			ShortKeywordMaxRunes:  5,
			ShortKeywordThreshold: 0.1,
			LongKeywordThreshold:  0.3,
			Stopwords: []string{
				// TR common & domain
				"proje", "projede", "projesi", "hakkında", "nedir", "hangi", "neler",
				"ile", "için", "ve", "veya", "bir", "bu", "şu", "uygulama",
				// EN common & domain
				"project", "projects", "about", "what", "which", "how",
				"for", "with", "and", "or", "a", "an", "the", "this", "that",
				"app", "application",
			},
		},
		Resolve: ResolvePolicy{
			MinNumericRunes: 4,
			MinTextRunes:    3,
			FuzzyMinRunes:   4,
			FuzzyThreshold:  0.4,
			PreviewRunes:    50,
		},
	}
}

// Validate checks that the policy is internally consistent.
func (p *Policy) Validate() error {
	if p.Context.SimilarLimit <= 0 || p.Context.RecentLimit <= 0 {
		return goerr.New("context limits must be positive",
			goerr.V("similar_limit", p.Context.SimilarLimit),
			goerr.V("recent_limit", p.Context.RecentLimit))
	}
	if p.Dedup.DistanceThreshold <= 0 || p.Dedup.DistanceThreshold >= 1 {
		return goerr.New("dedup distance threshold must be in (0, 1)",
			goerr.V("threshold", p.Dedup.DistanceThreshold))
	}
	if p.Retrieval.VectorLimit <= 0 || p.Retrieval.ResultLimit <= 0 {
		return goerr.New("retrieval limits must be positive",
			goerr.V("vector_limit", p.Retrieval.VectorLimit),
			goerr.V("result_limit", p.Retrieval.ResultLimit))
	}
	if p.Retrieval.ShortKeywordThreshold > p.Retrieval.LongKeywordThreshold {
		return goerr.New("short keyword threshold must not exceed long keyword threshold",
			goerr.V("short", p.Retrieval.ShortKeywordThreshold),
			goerr.V("long", p.Retrieval.LongKeywordThreshold))
	}
	if p.Resolve.FuzzyThreshold <= 0 || p.Resolve.FuzzyThreshold >= 1 {
		return goerr.New("fuzzy threshold must be in (0, 1)",
			goerr.V("threshold", p.Resolve.FuzzyThreshold))
	}
	if p.Resolve.PreviewRunes <= 0 {
		return goerr.New("preview length must be positive",
			goerr.V("preview_runes", p.Resolve.PreviewRunes))
	}
	return nil
}
