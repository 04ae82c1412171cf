// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (review.go, analytics.go, classifier.go, errors.go) hold shared types and
// the contracts implemented by adapters. No implementation code beyond small value helpers.
package domain
