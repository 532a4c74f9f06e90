// Package usd opens USD scene description files and exposes the narrow
// surface the validation engine needs: layer metadata, the prim hierarchy
// with its status flags, and a predicate-filtered depth-first traversal.
//
// Two container formats are supported: loose .usda/.usd text layers, and
// .usdz packages (uncompressed zip archives whose first .usda entry is the
// default layer). Binary crate (.usdc) layers are rejected at open time.
//
// The parser covers the usda subset this tool inspects: prim specifiers
// (def/over/class), prim type names, the active/instanceable metadata,
// local references, and attribute/relationship declarations. Composition
// arcs beyond local references are out of scope.
package usd
