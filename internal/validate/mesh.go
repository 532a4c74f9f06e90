package validate

import (
	"fmt"

	"github.com/vk/usdcheck/internal/engine"
	"github.com/vk/usdcheck/internal/usd"
)

// Mesh validator record codes.
const (
	CodeMeshMissingPoints    = "MeshMissingPoints"
	CodeMeshTopologyMismatch = "MeshTopologyMismatch"
	CodeMeshIndexOutOfRange  = "MeshIndexOutOfRange"
	CodeMeshDegenerateFace   = "MeshDegenerateFace"
)

// Mesh checks a Mesh prim's geometry for structural soundness: points must
// exist, face vertex counts and indices must agree, and every index must
// address a real point. All violations on the prim are recorded.
func Mesh(prim *usd.Prim, verbose bool) (bool, []engine.Record) {
	var records []engine.Record

	pointCount := 0
	if points, ok := prim.Attr("points"); ok {
		n, err := points.TupleCount()
		if err != nil {
			records = append(records, engine.Record{
				Code:   CodeMeshMissingPoints,
				Detail: fmt.Sprintf("prim %s: unreadable points: %v", prim.Path(), err),
			})
		} else {
			pointCount = n
		}
	}
	if pointCount == 0 && len(records) == 0 {
		records = append(records, engine.Record{
			Code:   CodeMeshMissingPoints,
			Detail: fmt.Sprintf("prim %s has no points", prim.Path()),
		})
	}

	counts, countsOK := intAttr(prim, "faceVertexCounts")
	indices, indicesOK := intAttr(prim, "faceVertexIndices")
	if !countsOK || !indicesOK {
		records = append(records, engine.Record{
			Code:   CodeMeshTopologyMismatch,
			Detail: fmt.Sprintf("prim %s is missing face topology", prim.Path()),
		})
		return len(records) == 0, records
	}

	total := 0
	for i, c := range counts {
		if c < 3 {
			detail := fmt.Sprintf("prim %s has a face with fewer than 3 vertices", prim.Path())
			if verbose {
				detail = fmt.Sprintf("prim %s: face %d has %d vertices", prim.Path(), i, c)
			}
			records = append(records, engine.Record{Code: CodeMeshDegenerateFace, Detail: detail})
		}
		total += c
	}
	if total != len(indices) {
		records = append(records, engine.Record{
			Code:   CodeMeshTopologyMismatch,
			Detail: fmt.Sprintf("prim %s: face vertex counts sum to %d but %d indices are authored", prim.Path(), total, len(indices)),
		})
	}
	for _, idx := range indices {
		if idx < 0 || idx >= pointCount {
			records = append(records, engine.Record{
				Code:   CodeMeshIndexOutOfRange,
				Detail: fmt.Sprintf("prim %s: face vertex index %d is out of range for %d points", prim.Path(), idx, pointCount),
			})
			break
		}
	}

	return len(records) == 0, records
}

// intAttr reads an integer-array attribute, reporting ok only when it is
// present and parseable.
func intAttr(prim *usd.Prim, name string) ([]int, bool) {
	attr, ok := prim.Attr(name)
	if !ok {
		return nil, false
	}
	vals, err := attr.Ints()
	if err != nil {
		return nil, false
	}
	return vals, true
}
