package compliance

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/usdcheck/internal/usd"
)

// Rule identifiers, stable across releases: they become the namespaced
// error codes in file reports.
const (
	RuleByteAlignment    = "ByteAlignmentChecker"
	RuleCompression      = "CompressionChecker"
	RuleMissingReference = "MissingReferenceChecker"
	RuleFileExtension    = "ARKitFileExtensionChecker"
	RulePrimType         = "ARKitPrimTypeChecker"
	RuleRootLayer        = "ARKitRootLayerChecker"
)

// RuleNames lists every rule the checker can run, in run order.
func RuleNames() []string {
	return []string{
		RuleByteAlignment,
		RuleCompression,
		RuleMissingReference,
		RuleFileExtension,
		RulePrimType,
		RuleRootLayer,
	}
}

// rule extends the engine-facing contract with the internal check hook.
type rule interface {
	Identifier() string
	FailedChecks() int
	failures() []string
	check(stage *usd.Stage)
}

// baseRule carries the identity and failure accounting shared by all rules.
type baseRule struct {
	id     string
	failed []string
}

func (r *baseRule) Identifier() string { return r.id }
func (r *baseRule) FailedChecks() int  { return len(r.failed) }
func (r *baseRule) failures() []string { return r.failed }

func (r *baseRule) fail(format string, args ...any) {
	r.failed = append(r.failed, r.id+": "+fmt.Sprintf(format, args...))
}

// packageEntries returns the archive entries a package rule should inspect,
// honoring the root-package-only scope. Loose layers yield nothing.
func packageEntries(stage *usd.Stage, rootOnly bool) []usd.PackageEntry {
	pkg := stage.UsdzPackage()
	if pkg == nil {
		return nil
	}
	if !rootOnly {
		return pkg.Entries
	}
	for _, e := range pkg.Entries {
		if e.Name == pkg.DefaultLayer {
			return []usd.PackageEntry{e}
		}
	}
	return nil
}

// byteAlignmentRule requires usdz entry data to start on 64-byte boundaries
// so layers and textures can be memory-mapped in place.
type byteAlignmentRule struct {
	baseRule
	rootOnly bool
}

func newByteAlignmentRule(cfg Config) *byteAlignmentRule {
	return &byteAlignmentRule{baseRule: baseRule{id: RuleByteAlignment}, rootOnly: cfg.RootPackageOnly}
}

func (r *byteAlignmentRule) check(stage *usd.Stage) {
	for _, e := range packageEntries(stage, r.rootOnly) {
		if e.Offset%64 != 0 {
			r.fail("entry %s starts at offset %d, which is not 64-byte aligned", e.Name, e.Offset)
		}
	}
}

// compressionRule requires usdz entries to be stored uncompressed.
type compressionRule struct {
	baseRule
	rootOnly bool
}

func newCompressionRule(cfg Config) *compressionRule {
	return &compressionRule{baseRule: baseRule{id: RuleCompression}, rootOnly: cfg.RootPackageOnly}
}

func (r *compressionRule) check(stage *usd.Stage) {
	for _, e := range packageEntries(stage, r.rootOnly) {
		if e.Compressed {
			r.fail("entry %s is compressed; usdz entries must be stored", e.Name)
		}
	}
}

// missingReferenceRule requires every local prim reference to resolve.
type missingReferenceRule struct {
	baseRule
}

func newMissingReferenceRule() *missingReferenceRule {
	return &missingReferenceRule{baseRule: baseRule{id: RuleMissingReference}}
}

func (r *missingReferenceRule) check(stage *usd.Stage) {
	for prim := range stage.Traverse(nil) {
		for _, ref := range prim.References() {
			if !strings.HasPrefix(ref, "/") {
				// External layer references are outside a single-layer check.
				continue
			}
			if stage.FindPrim(ref) == nil {
				r.fail("prim %s references %s, which does not exist", prim.Path(), ref)
			}
		}
	}
}

// arkitExtensions is the file content ARKit accepts inside a package. AVIF
// is included: modern ARKit releases read it.
var arkitExtensions = map[string]bool{
	".usda": true,
	".usdc": true,
	".usd":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".avif": true,
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
}

// fileExtensionRule restricts package entries to the ARKit allow list.
type fileExtensionRule struct {
	baseRule
	rootOnly bool
	allowed  map[string]bool
}

func newFileExtensionRule(cfg Config) *fileExtensionRule {
	allowed := arkitExtensions
	if cfg.AllowedExtensions != nil {
		allowed = make(map[string]bool, len(cfg.AllowedExtensions))
		for _, ext := range cfg.AllowedExtensions {
			allowed["."+strings.TrimPrefix(strings.ToLower(ext), ".")] = true
		}
	}
	return &fileExtensionRule{
		baseRule: baseRule{id: RuleFileExtension},
		rootOnly: cfg.RootPackageOnly,
		allowed:  allowed,
	}
}

func (r *fileExtensionRule) check(stage *usd.Stage) {
	for _, e := range packageEntries(stage, r.rootOnly) {
		ext := strings.ToLower(filepath.Ext(e.Name))
		if !r.allowed[ext] {
			r.fail("entry %s has unsupported extension %q", e.Name, ext)
		}
	}
}

// arkitPrimTypes are the prim schemas ARKit understands. Untyped prims are
// allowed; they carry no imageable behavior.
var arkitPrimTypes = map[string]bool{
	"":              true,
	"Scope":         true,
	"Xform":         true,
	"Mesh":          true,
	"GeomSubset":    true,
	"Material":      true,
	"Shader":        true,
	"Skeleton":      true,
	"SkelRoot":      true,
	"SkelAnimation": true,
	"BlendShape":    true,
	"SpatialAudio":  true,
}

// primTypeRule restricts visited prims to ARKit-known schemas.
type primTypeRule struct {
	baseRule
}

func newPrimTypeRule() *primTypeRule {
	return &primTypeRule{baseRule: baseRule{id: RulePrimType}}
}

func (r *primTypeRule) check(stage *usd.Stage) {
	pred := func(p *usd.Prim) bool { return p.IsActive() && p.IsDefined() && !p.IsAbstract() }
	for prim := range stage.Traverse(pred) {
		if !arkitPrimTypes[prim.TypeName()] {
			r.fail("prim %s has type %s, which is not a valid ARKit schema", prim.Path(), prim.TypeName())
		}
	}
}

// rootLayerRule requires the root layer to declare a resolvable defaultPrim
// and a Y up axis.
type rootLayerRule struct {
	baseRule
}

func newRootLayerRule() *rootLayerRule {
	return &rootLayerRule{baseRule: baseRule{id: RuleRootLayer}}
}

func (r *rootLayerRule) check(stage *usd.Stage) {
	switch {
	case stage.DefaultPrim() == "":
		r.fail("root layer has no defaultPrim")
	case stage.FindPrim("/"+stage.DefaultPrim()) == nil:
		r.fail("defaultPrim %q does not name a root prim", stage.DefaultPrim())
	}
	if stage.UpAxis() != "" && stage.UpAxis() != "Y" {
		r.fail("upAxis is %q; ARKit requires Y", stage.UpAxis())
	}
}
