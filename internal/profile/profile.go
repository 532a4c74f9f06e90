// Package profile loads optional HCL checker profiles: declarative files
// that tune the compliance checker without recompiling, e.g. relaxing the
// extension allow list for an internal pipeline or disabling a rule.
package profile

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/usdcheck/internal/compliance"
	"github.com/vk/usdcheck/internal/ctxlog"
)

type fileSchema struct {
	Checker *checkerSchema `hcl:"checker,block"`
	Rules   []ruleSchema   `hcl:"rule,block"`
}

type checkerSchema struct {
	ARKit              *bool `hcl:"arkit,optional"`
	SkipRootLayerCheck *bool `hcl:"skip_root_layer_check,optional"`
	RootPackageOnly    *bool `hcl:"root_package_only,optional"`
	SkipVariants       *bool `hcl:"skip_variants,optional"`
}

type ruleSchema struct {
	Name    string         `hcl:"name,label"`
	Enabled *bool          `hcl:"enabled,optional"`
	Options hcl.Expression `hcl:"options,optional"`
}

// Load parses a profile file and applies it on top of the base checker
// configuration.
func Load(ctx context.Context, path string, base compliance.Config) (compliance.Config, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading checker profile.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return base, fmt.Errorf("failed to parse profile %s: %s", path, diags.Error())
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return base, fmt.Errorf("failed to decode profile %s: %s", path, diags.Error())
	}

	cfg := base
	if c := schema.Checker; c != nil {
		if c.ARKit != nil {
			cfg.ARKit = *c.ARKit
		}
		if c.SkipRootLayerCheck != nil {
			cfg.SkipRootLayerCheck = *c.SkipRootLayerCheck
		}
		if c.RootPackageOnly != nil {
			cfg.RootPackageOnly = *c.RootPackageOnly
		}
		if c.SkipVariants != nil {
			cfg.SkipVariants = *c.SkipVariants
		}
	}

	known := make(map[string]bool)
	for _, name := range compliance.RuleNames() {
		known[name] = true
	}
	for _, r := range schema.Rules {
		if !known[r.Name] {
			return base, fmt.Errorf("profile %s: unknown compliance rule %q", path, r.Name)
		}
		if r.Enabled != nil && !*r.Enabled {
			cfg.DisabledRules = append(cfg.DisabledRules, r.Name)
		}
		if err := applyOptions(&cfg, r); err != nil {
			return base, fmt.Errorf("profile %s: %w", path, err)
		}
	}
	logger.Debug("Checker profile applied.", "rules_configured", len(schema.Rules))
	return cfg, nil
}

// applyOptions evaluates a rule's options expression and maps the supported
// keys onto the checker configuration.
func applyOptions(cfg *compliance.Config, r ruleSchema) error {
	if r.Options == nil {
		return nil
	}
	val, diags := r.Options.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("rule %q: invalid options: %s", r.Name, diags.Error())
	}
	if val.IsNull() {
		return nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return fmt.Errorf("rule %q: options must be an object", r.Name)
	}

	for key, item := range val.AsValueMap() {
		switch {
		case r.Name == compliance.RuleFileExtension && key == "allowed_extensions":
			exts, err := stringList(item)
			if err != nil {
				return fmt.Errorf("rule %q: option %q: %w", r.Name, key, err)
			}
			cfg.AllowedExtensions = exts
		default:
			return fmt.Errorf("rule %q has no option %q", r.Name, key)
		}
	}
	return nil
}

// stringList converts a cty list or tuple of strings.
func stringList(val cty.Value) ([]string, error) {
	if !val.CanIterateElements() {
		return nil, fmt.Errorf("expected a list of strings")
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, item := it.Element()
		if item.Type() != cty.String {
			return nil, fmt.Errorf("expected a list of strings")
		}
		out = append(out, item.AsString())
	}
	return out, nil
}
