// Package validate holds the structural validators the engine dispatches
// prims to: one for meshes, one for materials. Each validator inspects a
// single prim, returns whether it is locally valid, and reports every
// violation it found so one bad attribute never hides another.
package validate
