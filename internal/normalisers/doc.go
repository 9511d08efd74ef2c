// Package normalisers provides implementations of the Normaliser interface
// for documentation page formats. Each normaliser turns raw page bytes of a
// given MIME type into a Document whose content is ready for chunking.
//
// Normalisers are registered with the Registry at startup.
package normalisers
