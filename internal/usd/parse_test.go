package usd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicLayer = `#usda 1.0
(
    defaultPrim = "Root"
    upAxis = "Y"
    metersPerUnit = 0.01
)

def Xform "Root"
{
    def Mesh "Geom"
    {
        point3f[] points = [(0, 0, 0), (1, 0, 0), (0, 1, 0)]
        int[] faceVertexCounts = [3]
        int[] faceVertexIndices = [0, 1, 2]
    }

    def Material "Mat"
    {
        token outputs:surface.connect = </Root/Mat/Surface.outputs:surface>

        def Shader "Surface"
        {
            uniform token info:id = "UsdPreviewSurface"
            token outputs:surface
        }
    }
}
`

func TestParseLayer_Basic(t *testing.T) {
	st, err := parseLayer("basic.usda", []byte(basicLayer))
	require.NoError(t, err)

	assert.Equal(t, "Root", st.DefaultPrim())
	assert.Equal(t, "Y", st.UpAxis())
	assert.InDelta(t, 0.01, st.MetersPerUnit(), 1e-9)

	require.Len(t, st.RootPrims(), 1)
	root := st.RootPrims()[0]
	assert.Equal(t, "/Root", root.Path())
	assert.Equal(t, "Xform", root.TypeName())
	assert.True(t, root.IsDefined())
	assert.True(t, root.IsActive())
	require.Len(t, root.Children(), 2)

	geom := st.FindPrim("/Root/Geom")
	require.NotNil(t, geom)
	assert.Equal(t, KindMesh, geom.Kind())

	points, ok := geom.Attr("points")
	require.True(t, ok)
	n, err := points.TupleCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	counts, ok := geom.Attr("faceVertexCounts")
	require.True(t, ok)
	vals, err := counts.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{3}, vals)

	mat := st.FindPrim("/Root/Mat")
	require.NotNil(t, mat)
	assert.Equal(t, KindMaterial, mat.Kind())
	conn, ok := mat.Attr("outputs:surface.connect")
	require.True(t, ok)
	assert.Equal(t, "/Root/Mat/Surface.outputs:surface", conn.PathVal())

	shader := st.FindPrim("/Root/Mat/Surface")
	require.NotNil(t, shader)
	id, ok := shader.Attr("info:id")
	require.True(t, ok)
	assert.Equal(t, "UsdPreviewSurface", id.StringVal())
	// Declaration without a value opinion is still an attribute.
	_, ok = shader.Attr("outputs:surface")
	assert.True(t, ok)
}

func TestParseLayer_CommentsAndHeader(t *testing.T) {
	t.Run("header is not a comment", func(t *testing.T) {
		src := `#usda 1.0
# generated by exporter

def Xform "Root"
{
    # trailing note
}
`
		st, err := parseLayer("comments.usda", []byte(src))
		require.NoError(t, err)
		assert.NotNil(t, st.FindPrim("/Root"))
	})

	t.Run("comment before missing header", func(t *testing.T) {
		_, err := parseLayer("x.usda", []byte("# not a layer\ndef Xform \"Root\"\n{\n}\n"))
		assert.ErrorContains(t, err, "missing #usda header")
	})
}

func TestParseLayer_Errors(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		_, err := parseLayer("x.usda", []byte(`def Xform "Root"`))
		assert.ErrorContains(t, err, "missing #usda header")
	})

	t.Run("unterminated body", func(t *testing.T) {
		_, err := parseLayer("x.usda", []byte("#usda 1.0\ndef Xform \"Root\"\n{\n"))
		assert.ErrorContains(t, err, "unterminated body")
	})

	t.Run("garbage prim declaration", func(t *testing.T) {
		_, err := parseLayer("x.usda", []byte("#usda 1.0\nwhatever\n"))
		assert.ErrorContains(t, err, "expected prim declaration")
	})
}

func TestParseLayer_SpecifiersAndFlags(t *testing.T) {
	src := `#usda 1.0

def Xform "Root"
{
    def Xform "Hidden" (
        active = false
    )
    {
        def Mesh "HiddenMesh"
        {
        }
    }

    over "Sketch"
    {
        def Mesh "SketchMesh"
        {
        }
    }
}

class Xform "Proto"
{
    def Mesh "ProtoMesh"
    {
    }
}
`
	st, err := parseLayer("flags.usda", []byte(src))
	require.NoError(t, err)

	hidden := st.FindPrim("/Root/Hidden")
	require.NotNil(t, hidden)
	assert.False(t, hidden.IsActive())
	// active is prim-local metadata, not inherited by the model itself.
	assert.True(t, st.FindPrim("/Root/Hidden/HiddenMesh").IsActive())

	sketch := st.FindPrim("/Root/Sketch")
	require.NotNil(t, sketch)
	assert.False(t, sketch.IsDefined())
	assert.Equal(t, SpecifierOver, sketch.Specifier())
	// A def nested under an over is not defined either.
	assert.False(t, st.FindPrim("/Root/Sketch/SketchMesh").IsDefined())

	proto := st.FindPrim("/Proto")
	require.NotNil(t, proto)
	assert.True(t, proto.IsAbstract())
	// Abstract status propagates to every descendant of a class.
	assert.True(t, st.FindPrim("/Proto/ProtoMesh").IsAbstract())
	assert.True(t, st.FindPrim("/Proto/ProtoMesh").IsDefined())
}

func TestParseLayer_MultilineArrays(t *testing.T) {
	src := `#usda 1.0

def Mesh "M"
{
    int[] faceVertexCounts = [
        3,
        3
    ]
}
`
	st, err := parseLayer("multi.usda", []byte(src))
	require.NoError(t, err)
	attr, ok := st.FindPrim("/M").Attr("faceVertexCounts")
	require.True(t, ok)
	vals, err := attr.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, vals)
}

func TestParseLayer_SkipsUnknownBlocks(t *testing.T) {
	src := `#usda 1.0

def Xform "Root"
{
    variantSet "look" = {
        "red" {
        }
    }

    def Mesh "Geom"
    {
    }
}
`
	st, err := parseLayer("variant.usda", []byte(src))
	require.NoError(t, err)
	assert.NotNil(t, st.FindPrim("/Root/Geom"))
}

func TestParseLayer_References(t *testing.T) {
	src := `#usda 1.0

def Xform "A" (
    prepend references = </B>
)
{
}

def Xform "B" (
    references = [</C>, @other.usda@</D>]
)
{
}
`
	st, err := parseLayer("refs.usda", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"/B"}, st.FindPrim("/A").References())
	assert.Equal(t, []string{"/C", "@other.usda@</D>"}, st.FindPrim("/B").References())
}
