// Package app provides the application service layer.
//
// Service owns the classifier, the review repository, the analyzer and the clock. It
// validates input, scores text, persists predictions and serves analytics. HTTP handlers
// depend on it; it depends on domain interfaces, not concrete adapters.
package app
