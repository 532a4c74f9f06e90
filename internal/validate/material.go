package validate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/usdcheck/internal/engine"
	"github.com/vk/usdcheck/internal/usd"
)

// Material validator record codes.
const (
	CodeMaterialNoSurface      = "MaterialNoSurface"
	CodeMaterialUnknownShader  = "MaterialUnknownShader"
	CodeMaterialBadTexturePath = "MaterialBadTexturePath"
)

// knownShaderIDs are the shader implementations the target renderer ships.
var knownShaderIDs = map[string]bool{
	"UsdPreviewSurface":       true,
	"UsdUVTexture":            true,
	"UsdTransform2d":          true,
	"UsdPrimvarReader_float2": true,
	"UsdPrimvarReader_float3": true,
}

// textureExtensions are the image formats a texture shader may reference.
var textureExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".avif": true,
}

// Material checks a Material prim: it must expose a connected surface
// output, its shaders must be known implementations, and texture shaders
// must reference supported image formats.
func Material(prim *usd.Prim, verbose bool) (bool, []engine.Record) {
	var records []engine.Record

	if !hasSurfaceOutput(prim) {
		records = append(records, engine.Record{
			Code:   CodeMaterialNoSurface,
			Detail: fmt.Sprintf("prim %s has no connected surface output", prim.Path()),
		})
	}

	for _, child := range prim.Children() {
		if child.TypeName() != "Shader" {
			continue
		}
		id := shaderID(child)
		if id == "" || !knownShaderIDs[id] {
			detail := fmt.Sprintf("prim %s uses an unknown shader", child.Path())
			if verbose && id != "" {
				detail = fmt.Sprintf("prim %s uses unknown shader %q", child.Path(), id)
			}
			records = append(records, engine.Record{Code: CodeMaterialUnknownShader, Detail: detail})
			continue
		}
		if id == "UsdUVTexture" {
			records = append(records, checkTexturePath(child)...)
		}
	}

	return len(records) == 0, records
}

// hasSurfaceOutput reports whether the material connects its surface output,
// either on the material itself or on one of its preview surface shaders.
func hasSurfaceOutput(prim *usd.Prim) bool {
	if _, ok := prim.Attr("outputs:surface.connect"); ok {
		return true
	}
	for _, child := range prim.Children() {
		if child.TypeName() != "Shader" {
			continue
		}
		if shaderID(child) != "UsdPreviewSurface" {
			continue
		}
		if _, ok := child.Attr("outputs:surface"); ok {
			return true
		}
	}
	return false
}

// shaderID reads the info:id token of a shader prim, or "".
func shaderID(prim *usd.Prim) string {
	attr, ok := prim.Attr("info:id")
	if !ok {
		return ""
	}
	return attr.StringVal()
}

// checkTexturePath validates the asset path of a texture shader.
func checkTexturePath(shader *usd.Prim) []engine.Record {
	file, ok := shader.Attr("inputs:file")
	if !ok || file.AssetPath() == "" {
		return []engine.Record{{
			Code:   CodeMaterialBadTexturePath,
			Detail: fmt.Sprintf("prim %s has no texture file authored", shader.Path()),
		}}
	}
	ext := strings.ToLower(filepath.Ext(file.AssetPath()))
	if !textureExtensions[ext] {
		return []engine.Record{{
			Code:   CodeMaterialBadTexturePath,
			Detail: fmt.Sprintf("prim %s references unsupported texture format %q", shader.Path(), ext),
		}}
	}
	return nil
}
