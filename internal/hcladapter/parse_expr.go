package hcladapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/grammar"
)

// parseRef reads a bare dotted name such as GameState or physics.Plugin.
func parseRef(key grammar.Key, expr hcl.Expression) (config.Ref, hcl.Diagnostics) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return config.Ref{}, hcl.Diagnostics{grammar.WrongShape(key, expr.Range().Ptr())}
	}
	return config.Ref{Name: traversalKey(traversal), Range: expr.Range()}, nil
}

// tupleItems unwraps a [ ... ] expression.
func tupleItems(key grammar.Key, expr hclsyntax.Expression) ([]hclsyntax.Expression, hcl.Diagnostics) {
	tuple, ok := expr.(*hclsyntax.TupleConsExpr)
	if !ok {
		return nil, hcl.Diagnostics{grammar.WrongShape(key, expr.Range().Ptr())}
	}
	return tuple.Exprs, nil
}

func parseRefList(key grammar.Key, expr hclsyntax.Expression) (config.Value, hcl.Diagnostics) {
	items, diags := tupleItems(key, expr)
	if diags.HasErrors() {
		return nil, diags
	}
	refs := make(config.RefList, 0, len(items))
	for _, itemExpr := range items {
		ref, refDiags := parseRef(key, itemExpr)
		diags = append(diags, refDiags...)
		if !refDiags.HasErrors() {
			refs = append(refs, ref)
		}
	}
	return refs, diags
}

func parseExprList(key grammar.Key, expr hclsyntax.Expression) (config.Value, hcl.Diagnostics) {
	items, diags := tupleItems(key, expr)
	if diags.HasErrors() {
		return nil, diags
	}
	list := make(config.ExprList, 0, len(items))
	for _, itemExpr := range items {
		parsed, exprDiags := parseExpr(itemExpr)
		diags = append(diags, exprDiags...)
		if !exprDiags.HasErrors() {
			list = append(list, parsed)
		}
	}
	return list, diags
}

// parseExpr recursively reads references, calls and constant literals.
func parseExpr(expr hclsyntax.Expression) (config.Expr, hcl.Diagnostics) {
	switch e := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return parseExpr(e.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		return config.Expr{Kind: config.ExprRef, Name: traversalKey(e.Traversal), Range: e.SrcRange}, nil

	case *hclsyntax.FunctionCallExpr:
		if e.ExpandFinal {
			return config.Expr{}, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unsupported argument expansion",
				Detail:   fmt.Sprintf("The call to %q cannot expand its final argument with \"...\".", e.Name),
				Subject:  e.Range().Ptr(),
			}}
		}
		call := config.Expr{Kind: config.ExprCall, Name: e.Name, Range: e.Range()}
		var diags hcl.Diagnostics
		for _, argExpr := range e.Args {
			arg, argDiags := parseExpr(argExpr)
			diags = append(diags, argDiags...)
			call.Args = append(call.Args, arg)
		}
		return call, diags
	}

	if len(expr.Variables()) > 0 {
		return config.Expr{}, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported expression",
			Detail:   "Only names, calls and constant values may be used here.",
			Subject:  expr.Range().Ptr(),
		}}
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return config.Expr{}, diags
	}
	return config.Expr{Kind: config.ExprLiteral, Value: val, Range: expr.Range()}, nil
}
