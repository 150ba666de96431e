package compiler

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/host"
)

// System combinators.
const (
	combChain   = "chain"
	combRunIf   = "run_if"
	combBefore  = "before"
	combAfter   = "after"
	combInState = "in_state"
)

var combinators = []string{combChain, combRunIf, combBefore, combAfter}

func (r *resolver) systems(list config.ExprList) ([]host.SystemConfig, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	out := make([]host.SystemConfig, 0, len(list))
	for _, e := range list {
		s, sDiags := r.system(e)
		diags = append(diags, sDiags...)
		out = append(out, s)
	}
	return out, diags
}

// system resolves a system expression into a config tree. The config is
// named after the canonical text of the expression.
func (r *resolver) system(e config.Expr) (host.SystemConfig, hcl.Diagnostics) {
	switch e.Kind {
	case config.ExprRef:
		fn, ok := r.reg.System(e.Name)
		if !ok {
			return host.SystemConfig{}, hcl.Diagnostics{unresolved("system", e.Name, e.Range)}
		}
		return host.SystemConfig{Name: e.String(), Func: fn}, nil
	case config.ExprLiteral:
		return host.SystemConfig{}, hcl.Diagnostics{invalid("Invalid system", "A system must be a name or a combinator call, not a literal.", e.Range)}
	}

	switch e.Name {
	case combChain:
		if len(e.Args) == 0 {
			return host.SystemConfig{}, hcl.Diagnostics{invalid("Empty chain", "chain() needs at least one system.", e.Range)}
		}
		members, diags := r.systems(e.Args)
		return host.SystemConfig{Name: e.String(), Chain: members}, diags

	case combRunIf:
		if len(e.Args) < 2 {
			return host.SystemConfig{}, hcl.Diagnostics{arity(e, "run_if(system, condition...)")}
		}
		s, diags := r.system(e.Args[0])
		for _, condExpr := range e.Args[1:] {
			cond, condDiags := r.condition(condExpr)
			diags = append(diags, condDiags...)
			s.Conditions = append(s.Conditions, cond)
		}
		s.Name = e.String()
		return s, diags

	case combBefore, combAfter:
		if len(e.Args) != 2 {
			return host.SystemConfig{}, hcl.Diagnostics{arity(e, e.Name+"(system, target)")}
		}
		s, diags := r.system(e.Args[0])
		target := e.Args[1]
		if target.Kind != config.ExprRef {
			return s, append(diags, invalid("Invalid ordering target", "The target of "+e.Name+" must be a system name.", target.Range))
		}
		if _, ok := r.reg.System(target.Name); !ok {
			return s, append(diags, unresolved("system", target.Name, target.Range))
		}
		if e.Name == combBefore {
			s.Before = append(s.Before, target.Name)
		} else {
			s.After = append(s.After, target.Name)
		}
		s.Name = e.String()
		return s, diags
	}

	return host.SystemConfig{}, hcl.Diagnostics{invalid(
		"Unknown system combinator",
		fmt.Sprintf("%q is not a system combinator. Supported combinators: %s.", e.Name, strings.Join(combinators, ", ")),
		e.Range,
	)}
}

func (r *resolver) condition(e config.Expr) (host.Condition, hcl.Diagnostics) {
	switch {
	case e.Kind == config.ExprRef:
		fn, ok := r.reg.Condition(e.Name)
		if !ok {
			return host.Condition{}, hcl.Diagnostics{unresolved("condition", e.Name, e.Range)}
		}
		return host.Condition{Name: e.String(), Func: fn}, nil
	case e.Kind == config.ExprCall && e.Name == combInState:
		if len(e.Args) != 1 {
			return host.Condition{}, hcl.Diagnostics{arity(e, "in_state(StateValue)")}
		}
		sv, diags := r.stateValue(e.Args[0])
		return host.Condition{Name: e.String(), State: &sv}, diags
	}
	return host.Condition{}, hcl.Diagnostics{invalid("Invalid run condition", "A run condition must be a condition name or in_state(StateValue).", e.Range)}
}

func arity(e config.Expr, usage string) *hcl.Diagnostic {
	return invalid("Wrong number of arguments", fmt.Sprintf("Usage: %s.", usage), e.Range)
}
