package hcladapter

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/grammar"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// field is one name = value pair of a block body or object expression.
type field struct {
	name string
	expr hcl.Expression
	rng  hcl.Range
}

// objectFields reads the pairs of a { name = value } expression. Keys must be
// bare identifiers or string literals.
func objectFields(key grammar.Key, expr hclsyntax.Expression) ([]field, hcl.Diagnostics) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, hcl.Diagnostics{grammar.WrongShape(key, expr.Range().Ptr())}
	}
	fields := make([]field, 0, len(obj.Items))
	var diags hcl.Diagnostics
	for _, it := range obj.Items {
		name, nameDiags := objectKeyName(it.KeyExpr)
		if nameDiags.HasErrors() {
			diags = append(diags, nameDiags...)
			continue
		}
		fields = append(fields, field{
			name: name,
			expr: it.ValueExpr,
			rng:  hcl.RangeBetween(it.KeyExpr.Range(), it.ValueExpr.Range()),
		})
	}
	return fields, diags
}

func objectKeyName(expr hclsyntax.Expression) (string, hcl.Diagnostics) {
	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		return kw, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.Type() != cty.String || val.IsNull() {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid object key",
			Detail:   "Keys must be identifiers or string literals.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	return val.AsString(), nil
}

func parseMetaFields(fields []field) (config.Value, hcl.Diagnostics) {
	var meta config.MetaMap
	var diags hcl.Diagnostics
	for _, f := range fields {
		rng := f.rng
		if !grammar.IsMetaField(f.name) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  "Unknown meta field",
				Detail:   fmt.Sprintf("The meta field %q is ignored. Known fields are %q and %q.", f.name, grammar.MetaVersion, grammar.MetaDescription),
				Subject:  &rng,
			})
			continue
		}

		s, strDiags := literalString(f)
		diags = append(diags, strDiags...)
		if strDiags.HasErrors() {
			continue
		}

		switch f.name {
		case grammar.MetaVersion:
			if _, err := semver.NewVersion(s); err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagWarning,
					Summary:  "Version is not semantic",
					Detail:   fmt.Sprintf("The version %q is not a semantic version (%s); version constraints will not match it.", s, err),
					Subject:  &rng,
				})
			}
			meta.Version = &s
		case grammar.MetaDescription:
			meta.Description = &s
		}
	}
	return meta, diags
}

func parseTestFlagFields(fields []field) (config.Value, hcl.Diagnostics) {
	flags := make(config.TestFlags, 0, len(fields))
	var diags hcl.Diagnostics
	for _, f := range fields {
		rng := f.rng
		if !grammar.IsTestFlag(f.name) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown test flag",
				Detail:   fmt.Sprintf("The test flag %q is not supported. Supported flags: %s.", f.name, strings.Join(grammar.TestFlagNames(), ", ")),
				Subject:  &rng,
			})
			continue
		}

		val, valDiags := f.expr.Value(nil)
		if valDiags.HasErrors() || val.Type() != cty.Bool || val.IsNull() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid test flag value",
				Detail:   fmt.Sprintf("The test flag %q must be true or false.", f.name),
				Subject:  &rng,
			})
			continue
		}
		flags = append(flags, config.Flag{Name: f.name, Value: val.True(), Range: rng})
	}
	return flags, diags
}

func literalString(f field) (string, hcl.Diagnostics) {
	val, diags := f.expr.Value(nil)
	if !diags.HasErrors() && !val.IsNull() {
		if conv, err := convert.Convert(val, cty.String); err == nil && val.Type().IsPrimitiveType() {
			return conv.AsString(), nil
		}
	}
	rng := f.rng
	return "", hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid meta value",
		Detail:   fmt.Sprintf("The meta field %q must be a constant string.", f.name),
		Subject:  &rng,
	}}
}

func parseStateMap(key grammar.Key, expr hclsyntax.Expression) (config.Value, hcl.Diagnostics) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return nil, hcl.Diagnostics{grammar.WrongShape(key, expr.Range().Ptr())}
	}

	arms := make(config.StateMap, 0, len(obj.Items))
	var diags hcl.Diagnostics
	for _, it := range obj.Items {
		state, stateDiags := stateKey(it.KeyExpr)
		diags = append(diags, stateDiags...)

		systems, sysDiags := parseExprList(key, it.ValueExpr)
		diags = append(diags, sysDiags...)
		if stateDiags.HasErrors() || sysDiags.HasErrors() {
			continue
		}
		arms = append(arms, config.StateArm{
			State:   state,
			Systems: systems.(config.ExprList),
			Range:   hcl.RangeBetween(it.KeyExpr.Range(), it.ValueExpr.Range()),
		})
	}
	return arms, diags
}

// stateKey reads a state value key, written GameState.Playing or "GameState.Playing".
func stateKey(expr hclsyntax.Expression) (config.Expr, hcl.Diagnostics) {
	if traversal, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() {
		return config.Expr{Kind: config.ExprRef, Name: traversalKey(traversal), Range: expr.Range()}, nil
	}
	name, diags := objectKeyName(expr)
	if diags.HasErrors() {
		return config.Expr{}, diags
	}
	return config.Expr{Kind: config.ExprRef, Name: name, Range: expr.Range()}, nil
}
