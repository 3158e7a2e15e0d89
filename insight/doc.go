// Package insight derives a meeting's summary, action items and decisions
// from its transcript.
//
// Parse is pure and turns a model response into Insights. Extractor calls the
// LLM and never fails: provider errors produce a fixed degraded result. Service
// stores, caches and pushes insights and runs generation on the task queue.
package insight
