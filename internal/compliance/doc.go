// Package compliance is the rule-based checker the engine consults
// alongside structural validation. It runs an independent pass over the
// input file: package-level rules inspect the physical .usdz layout (entry
// alignment, compression, file extensions) and stage-level rules inspect
// the composed hierarchy (prim types, root layer metadata, reference
// resolution).
//
// The engine only sees the narrow Rule contract: a stable identifier and a
// failed-check count. Rule internals are free to change without touching
// the merge logic.
package compliance
