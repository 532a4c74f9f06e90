package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/usdcheck/internal/compliance"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_CheckerBlock(t *testing.T) {
	path := writeProfile(t, `
checker {
  arkit                 = false
  skip_root_layer_check = true
  root_package_only     = true
}
`)

	cfg, err := Load(context.Background(), path, compliance.DefaultConfig())
	require.NoError(t, err)

	assert.False(t, cfg.ARKit)
	assert.True(t, cfg.SkipRootLayerCheck)
	assert.True(t, cfg.RootPackageOnly)
	assert.False(t, cfg.SkipVariants, "untouched fields keep the base value")
}

func TestLoad_EmptyProfileKeepsBase(t *testing.T) {
	path := writeProfile(t, "\n")

	base := compliance.DefaultConfig()
	cfg, err := Load(context.Background(), path, base)
	require.NoError(t, err)

	assert.Equal(t, base, cfg)
}

func TestLoad_DisabledRule(t *testing.T) {
	path := writeProfile(t, `
rule "ARKitRootLayerChecker" {
  enabled = false
}

rule "CompressionChecker" {
  enabled = true
}
`)

	cfg, err := Load(context.Background(), path, compliance.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{compliance.RuleRootLayer}, cfg.DisabledRules)
}

func TestLoad_AllowedExtensionsOption(t *testing.T) {
	path := writeProfile(t, `
rule "ARKitFileExtensionChecker" {
  options = {
    allowed_extensions = ["usda", "png", "exr"]
  }
}
`)

	cfg, err := Load(context.Background(), path, compliance.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"usda", "png", "exr"}, cfg.AllowedExtensions)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"), compliance.DefaultConfig())
		assert.ErrorContains(t, err, "failed to parse profile")
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeProfile(t, "checker {\n")
		_, err := Load(context.Background(), path, compliance.DefaultConfig())
		assert.ErrorContains(t, err, "failed to parse profile")
	})

	t.Run("unknown rule name", func(t *testing.T) {
		path := writeProfile(t, "rule \"NoSuchChecker\" {\n  enabled = false\n}\n")
		_, err := Load(context.Background(), path, compliance.DefaultConfig())
		assert.ErrorContains(t, err, `unknown compliance rule "NoSuchChecker"`)
	})

	t.Run("unknown option key", func(t *testing.T) {
		path := writeProfile(t, `
rule "ARKitPrimTypeChecker" {
  options = {
    allowed_extensions = ["usda"]
  }
}
`)
		_, err := Load(context.Background(), path, compliance.DefaultConfig())
		assert.ErrorContains(t, err, `has no option "allowed_extensions"`)
	})

	t.Run("option value not a list of strings", func(t *testing.T) {
		path := writeProfile(t, `
rule "ARKitFileExtensionChecker" {
  options = {
    allowed_extensions = [1, 2]
  }
}
`)
		_, err := Load(context.Background(), path, compliance.DefaultConfig())
		assert.ErrorContains(t, err, "expected a list of strings")
	})
}
