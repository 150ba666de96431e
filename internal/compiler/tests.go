package compiler

import (
	"context"

	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/conformance"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/grammar"
	"github.com/vk/plugdef/internal/typeinfo"
)

// testPass generates the conformance suite. It uses the first generate_tests
// entry and gathers resources, messages, states and dependencies from the
// whole definition. A check is only generated when its flag is set and there
// is something to check.
func (c *Compiler) testPass(ctx context.Context, res *resolver, p *Plugin, def *config.Definition) conformance.Suite {
	suite := conformance.Suite{Plugin: def.Name}

	var flags config.TestFlags
	found := false
	for _, entry := range def.Entries {
		if v, ok := entry.Value.(config.TestFlags); ok && entry.Key == grammar.GenerateTests {
			flags, found = v, true
			break
		}
	}
	if !found {
		return suite
	}

	var resources, messages, states []typeinfo.TypeInfo
	subject := conformance.Subject{Plugin: p}
	for _, entry := range def.Entries {
		switch entry.Key {
		case grammar.InitResource:
			resources = append(resources, res.quietTypes(entry.Value.(config.RefList))...)
		case grammar.InsertResource:
			for _, e := range entry.Value.(config.ExprList) {
				if src, diags := res.resource(e); !diags.HasErrors() {
					resources = append(resources, src.info)
				}
			}
		case grammar.AddMessage:
			messages = append(messages, res.quietTypes(entry.Value.(config.RefList))...)
		case grammar.InitState:
			states = append(states, res.quietTypes(entry.Value.(config.RefList))...)
			subject.UsesStates = true
		case grammar.AddSubState:
			subject.UsesStates = true
		case grammar.DependsOn:
			for _, ref := range entry.Value.(config.RefList) {
				if dep, ok := res.scope.plugin(ref.Name); ok {
					subject.Dependencies = append(subject.Dependencies, dep)
				}
			}
		}
	}

	if flags.Enabled(grammar.TestResources) && len(resources) > 0 {
		suite.Checks = append(suite.Checks, conformance.ResourcesCheck(subject, resources))
	}
	if flags.Enabled(grammar.TestMessages) && len(messages) > 0 {
		suite.Checks = append(suite.Checks, conformance.MessagesCheck(subject, messages))
	}
	if flags.Enabled(grammar.TestStates) && len(states) > 0 {
		suite.Checks = append(suite.Checks, conformance.StatesCheck(subject, states))
	}
	if flags.Enabled(grammar.TestDependencies) && len(subject.Dependencies) > 0 {
		suite.Checks = append(suite.Checks, conformance.MissingDependenciesCheck(subject))
	}

	ctxlog.FromContext(ctx).Debug("Test pass complete.", "checks", len(suite.Checks))
	return suite
}
