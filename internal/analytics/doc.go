// Package analytics turns the stored reviews of a game into the analytics payload.
//
// Aggregator reads grouped counts, the most recent reviews and a trailing monthly series from a
// domain.ReviewRepository. CachedAnalyzer decorates any domain.Analyzer with a generation-keyed
// result cache and collapses concurrent identical lookups.
package analytics
