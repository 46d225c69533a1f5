// Package analysis generates publication metadata for downloaded clips. A
// primary LLM call produces the structured result; an optional enrichment
// call refines it and the two are merged under a fixed policy. Providers
// that return prose instead of JSON fall back to heuristic text extraction.
package analysis
