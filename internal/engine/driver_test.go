package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/usdcheck/internal/usd"
)

const goodMeshLayer = `#usda 1.0
(
    defaultPrim = "Root"
)

def Xform "Root"
{
    def Mesh "Geom"
    {
        point3f[] points = [(0, 0, 0), (1, 0, 0), (0, 1, 0)]
        int[] faceVertexCounts = [3]
        int[] faceVertexIndices = [0, 1, 2]
    }
}
`

const badMeshLayer = `#usda 1.0

def Mesh "Broken"
{
    int[] faceVertexCounts = [3]
    int[] faceVertexIndices = [0, 1, 2]
}
`

// stubChecker returns canned results per file base name.
type stubChecker struct {
	results map[string]ComplianceResult
	calls   atomic.Int32
}

func (c *stubChecker) CheckCompliance(ctx context.Context, path string) (ComplianceResult, error) {
	c.calls.Add(1)
	if c.results == nil {
		return ComplianceResult{}, nil
	}
	return c.results[filepath.Base(path)], nil
}

// meshPresenceValidator fails any mesh without points, recording one
// violation per failing prim.
func meshPresenceValidator(prim *usd.Prim, verbose bool) (bool, []Record) {
	if _, ok := prim.Attr("points"); ok {
		return true, nil
	}
	return false, []Record{{Code: "MeshMissingPoints", Detail: "prim " + prim.Path() + " has no points"}}
}

func newTestDriver(checker Checker, workers int) *Driver {
	registry := NewRegistry()
	registry.Register(usd.KindMesh, meshPresenceValidator)
	return NewDriver(registry, checker, false, workers, nil)
}

func TestDriver_GoodMeshPasses(t *testing.T) {
	file := writeScene(t, "goodMesh.usda", goodMeshLayer)
	driver := newTestDriver(&stubChecker{}, 1)

	report, code := driver.Run(context.Background(), []string{file})

	assert.Equal(t, 0, code)
	require.Len(t, report.Files, 1)
	assert.True(t, report.Files[0].Success())
	assert.Empty(t, report.Files[0].Errors)
}

func TestDriver_BadMeshFailsStructurally(t *testing.T) {
	file := writeScene(t, "badMesh.usda", badMeshLayer)
	driver := newTestDriver(&stubChecker{}, 1)

	report, code := driver.Run(context.Background(), []string{file})

	assert.Equal(t, 1, code)
	require.Len(t, report.Files, 1)
	assert.False(t, report.Files[0].Success())
	require.Len(t, report.Files[0].Errors, 1)
	assert.Equal(t, "MeshMissingPoints", report.Files[0].Errors[0].Code)
}

func TestDriver_ExternalRuleFailure(t *testing.T) {
	file := writeScene(t, "ruleFail.usda", goodMeshLayer)
	checker := &stubChecker{results: map[string]ComplianceResult{
		"ruleFail.usda": {Rules: []Rule{stubRule{id: "RuleX", failed: 1}}},
	}}
	driver := newTestDriver(checker, 1)

	report, code := driver.Run(context.Background(), []string{file})

	assert.Equal(t, 1, code)
	assert.Equal(t, []Record{{Code: "PXR_RuleX"}}, report.Files[0].Errors)
}

func TestDriver_UnknownTypesAreSkipped(t *testing.T) {
	src := `#usda 1.0

def Xform "Root"
{
    def Camera "Cam"
    {
    }

    def CustomThing "Widget"
    {
    }
}
`
	file := writeScene(t, "unknown.usda", src)
	driver := newTestDriver(&stubChecker{}, 1)

	report, code := driver.Run(context.Background(), []string{file})

	assert.Equal(t, 0, code)
	assert.True(t, report.Files[0].Success())
	assert.Empty(t, report.Files[0].Errors)
}

func TestDriver_BatchIsolation(t *testing.T) {
	// File A is malformed; file B is valid. A's failure must not leak into
	// B's report or abort the batch.
	bad := filepath.Join(t.TempDir(), "missing.usda")
	good := writeScene(t, "good.usda", goodMeshLayer)
	driver := newTestDriver(&stubChecker{}, 1)

	report, code := driver.Run(context.Background(), []string{bad, good})

	assert.Equal(t, 1, code)
	require.Len(t, report.Files, 2)
	assert.False(t, report.Files[0].Success())
	assert.Equal(t, CodeOpenError, report.Files[0].Errors[0].Code)
	assert.True(t, report.Files[1].Success())
}

func TestDriver_OpenErrorSkipsChecker(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "missing.usda")
	checker := &stubChecker{}
	driver := newTestDriver(checker, 1)

	report, _ := driver.Run(context.Background(), []string{bad})

	assert.False(t, report.Files[0].Success())
	assert.Zero(t, checker.calls.Load())
}

func TestDriver_CheckerErrorDegradesReport(t *testing.T) {
	file := writeScene(t, "good.usda", goodMeshLayer)
	driver := newTestDriver(failingChecker{}, 1)

	report, code := driver.Run(context.Background(), []string{file})

	assert.Equal(t, 1, code)
	require.NotEmpty(t, report.Files[0].Errors)
	assert.Equal(t, CodeCheckerError, report.Files[0].Errors[len(report.Files[0].Errors)-1].Code)
}

type failingChecker struct{}

func (failingChecker) CheckCompliance(ctx context.Context, path string) (ComplianceResult, error) {
	return ComplianceResult{}, os.ErrDeadlineExceeded
}

func TestDriver_OrderPreservedUnderConcurrency(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.usda", "b.usda", "c.usda", "d.usda", "e.usda"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(goodMeshLayer), 0o644))
		files = append(files, path)
	}

	driver := newTestDriver(&stubChecker{}, 4)
	report, code := driver.Run(context.Background(), files)

	assert.Equal(t, 0, code)
	require.Len(t, report.Files, len(files))
	for i, f := range files {
		assert.Equal(t, f, report.Files[i].File)
	}
}

func TestDriver_Idempotent(t *testing.T) {
	good := writeScene(t, "good.usda", goodMeshLayer)
	bad := writeScene(t, "bad.usda", badMeshLayer)
	driver := newTestDriver(&stubChecker{}, 1)

	first, firstCode := driver.Run(context.Background(), []string{good, bad})
	second, secondCode := driver.Run(context.Background(), []string{good, bad})

	assert.Equal(t, firstCode, secondCode)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reports differ between identical runs (-first +second):\n%s", diff)
	}
}

func TestDriver_InstancedGeometryValidatedOnce(t *testing.T) {
	src := `#usda 1.0

class Xform "Proto"
{
    def Mesh "ProtoMesh"
    {
    }
}

def Xform "Inst" (
    instanceable = true
    references = </Proto>
)
{
}
`
	file := writeScene(t, "inst.usda", src)
	driver := newTestDriver(&stubChecker{}, 1)

	report, code := driver.Run(context.Background(), []string{file})

	// The prototype mesh is abstract and skipped; its proxy under the
	// instance is visited exactly once and fails for its missing points.
	assert.Equal(t, 1, code)
	require.Len(t, report.Files[0].Errors, 1)
	assert.Equal(t, "MeshMissingPoints", report.Files[0].Errors[0].Code)
	assert.Contains(t, report.Files[0].Errors[0].Detail, "/Inst/ProtoMesh")
}
