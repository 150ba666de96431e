package hcladapter

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/grammar"
)

// item is one attribute or block of a plugin body.
type item struct {
	name  string
	rng   hcl.Range
	attr  *hclsyntax.Attribute
	block *hclsyntax.Block
}

// orderedItems returns attributes and blocks interleaved in source order.
func orderedItems(body *hclsyntax.Body) []item {
	items := make([]item, 0, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		items = append(items, item{name: name, rng: attr.SrcRange, attr: attr})
	}
	for _, block := range body.Blocks {
		items = append(items, item{name: block.Type, rng: block.DefRange(), block: block})
	}
	slices.SortFunc(items, func(a, b item) int {
		return a.rng.Start.Byte - b.rng.Start.Byte
	})
	return items
}

// parseBody turns one plugin block body into ordered entries.
func parseBody(ctx context.Context, body hcl.Body) ([]config.Entry, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)

	syntaxBody, ok := body.(*hclsyntax.Body)
	if !ok {
		rng := body.MissingItemRange()
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported syntax",
			Detail:   "Plugin definitions must be written in native HCL syntax.",
			Subject:  &rng,
		}}
	}

	var entries []config.Entry
	var diags hcl.Diagnostics
	for _, it := range orderedItems(syntaxBody) {
		rng := it.rng
		opt, known := grammar.Lookup(it.name)
		if !known {
			diags = append(diags, grammar.UnknownKey(it.name, &rng))
			continue
		}

		var value config.Value
		var valueDiags hcl.Diagnostics
		if it.block != nil {
			value, valueDiags = parseBlock(opt, it.block)
		} else {
			value, valueDiags = parseAttribute(opt, it.attr.Expr)
		}
		diags = append(diags, valueDiags...)
		if valueDiags.HasErrors() {
			continue
		}

		logger.Debug("Parsed plugin option.", "key", opt.Key, "range", rng.String())
		entries = append(entries, config.Entry{Key: opt.Key, Range: rng, Value: value})
	}
	return entries, diags
}

func parseBlock(opt grammar.Option, block *hclsyntax.Block) (config.Value, hcl.Diagnostics) {
	rng := block.DefRange()
	if !opt.Block {
		return nil, hcl.Diagnostics{grammar.WrongShape(opt.Key, &rng)}
	}
	if len(block.Labels) > 0 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unexpected block label",
			Detail:   fmt.Sprintf("A %q block takes no labels.", opt.Key),
			Subject:  block.LabelRanges[0].Ptr(),
		}}
	}
	if len(block.Body.Blocks) > 0 {
		nested := block.Body.Blocks[0]
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unexpected nested block",
			Detail:   fmt.Sprintf("A %q block may only contain attributes.", opt.Key),
			Subject:  nested.DefRange().Ptr(),
		}}
	}

	fields := make([]field, 0, len(block.Body.Attributes))
	for name, attr := range block.Body.Attributes {
		fields = append(fields, field{name: name, expr: attr.Expr, rng: attr.SrcRange})
	}
	slices.SortFunc(fields, func(a, b field) int {
		return a.rng.Start.Byte - b.rng.Start.Byte
	})

	switch opt.Shape {
	case grammar.ShapeMeta:
		return parseMetaFields(fields)
	case grammar.ShapeTestFlags:
		return parseTestFlagFields(fields)
	}
	return nil, hcl.Diagnostics{grammar.WrongShape(opt.Key, &rng)}
}

func parseAttribute(opt grammar.Option, expr hclsyntax.Expression) (config.Value, hcl.Diagnostics) {
	switch opt.Shape {
	case grammar.ShapeTypeList, grammar.ShapeNameList:
		return parseRefList(opt.Key, expr)
	case grammar.ShapeExprList, grammar.ShapeSystemList:
		return parseExprList(opt.Key, expr)
	case grammar.ShapeStateMap:
		return parseStateMap(opt.Key, expr)
	case grammar.ShapeCallable:
		ref, diags := parseRef(opt.Key, expr)
		if diags.HasErrors() {
			return nil, diags
		}
		return config.Callable{Ref: ref}, nil
	case grammar.ShapeMeta, grammar.ShapeTestFlags:
		fields, diags := objectFields(opt.Key, expr)
		if diags.HasErrors() {
			return nil, diags
		}
		if opt.Shape == grammar.ShapeMeta {
			return parseMetaFields(fields)
		}
		return parseTestFlagFields(fields)
	}
	return nil, hcl.Diagnostics{grammar.WrongShape(opt.Key, expr.Range().Ptr())}
}

// checkDefinition validates constraints that span fragments.
func checkDefinition(def *config.Definition) hcl.Diagnostics {
	var diags hcl.Diagnostics
	seenTests := false
	for i, entry := range def.Entries {
		rng := entry.Range
		switch entry.Key {
		case grammar.DependsOn:
			if i != 0 {
				diags = append(diags, grammar.DependsOnNotFirst(&rng))
			}
		case grammar.GenerateTests:
			if seenTests {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate \"generate_tests\" option",
					Detail:   "Only one \"generate_tests\" option is allowed per plugin.",
					Subject:  &rng,
				})
			}
			seenTests = true
		}
	}
	return diags
}
