package config

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// ExprKind tells the forms of Expr apart.
type ExprKind int

const (
	// ExprRef is a bare name, e.g. a system or a registered value.
	ExprRef ExprKind = iota
	// ExprCall is a named call with arguments, e.g. run_if(a, b).
	ExprCall
	// ExprLiteral is a constant such as a string or number.
	ExprLiteral
)

// Expr is a parsed expression. Names are dotted paths.
type Expr struct {
	Kind  ExprKind
	Name  string
	Args  []Expr
	Value cty.Value
	Range hcl.Range
}

// RefExpr builds a reference expression.
func RefExpr(name string) Expr {
	return Expr{Kind: ExprRef, Name: name}
}

// CallExpr builds a call expression.
func CallExpr(name string, args ...Expr) Expr {
	return Expr{Kind: ExprCall, Name: name, Args: args}
}

// LiteralExpr builds a literal expression.
func LiteralExpr(v cty.Value) Expr {
	return Expr{Kind: ExprLiteral, Value: v}
}

// String renders the canonical text of the expression, e.g.
// run_if(chain(a, b), in_state(GameState.Playing)).
func (e Expr) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e Expr) write(sb *strings.Builder) {
	switch e.Kind {
	case ExprRef:
		sb.WriteString(e.Name)
	case ExprCall:
		sb.WriteString(e.Name)
		sb.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			arg.write(sb)
		}
		sb.WriteByte(')')
	case ExprLiteral:
		if e.Value == cty.NilVal {
			sb.WriteString("null")
			return
		}
		sb.Write(hclwrite.TokensForValue(e.Value).Bytes())
	}
}
