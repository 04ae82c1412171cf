// Package classifier implements domain.Classifier.
//
// Model scores text with a linear two-class bag-of-words checkpoint loaded from disk,
// falling back to the checkpoint bundled into the binary. RemoteClient delegates to an
// external text-classification endpoint with retries and a circuit breaker.
package classifier
