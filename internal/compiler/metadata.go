package compiler

import (
	"context"

	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/grammar"
	"github.com/vk/plugdef/internal/metadata"
	"github.com/vk/plugdef/internal/typeinfo"
)

// metadataPass folds the entries into the plugin's metadata. It never
// reports anything: unknown keys and names that do not resolve are skipped.
func (c *Compiler) metadataPass(ctx context.Context, res *resolver, def *config.Definition) *metadata.PluginMetadata {
	m := metadata.Empty(def.Name)

	for _, entry := range def.Entries {
		switch v := entry.Value.(type) {
		case config.MetaMap:
			if entry.Key != grammar.Meta {
				continue
			}
			if v.Version != nil {
				version := *v.Version
				m.Version = &version
			}
			if v.Description != nil {
				description := *v.Description
				m.Description = &description
			}

		case config.RefList:
			switch entry.Key {
			case grammar.DependsOn:
				for _, ref := range v {
					m.Dependencies = append(m.Dependencies, ref.Name)
				}
			case grammar.InitResource:
				m.Resources = append(m.Resources, res.quietTypes(v)...)
			case grammar.AddMessage:
				m.Messages = append(m.Messages, res.quietTypes(v)...)
			case grammar.InitState:
				m.States = append(m.States, res.quietTypes(v)...)
			case grammar.AddSubState:
				m.SubStates = append(m.SubStates, res.quietTypes(v)...)
			case grammar.RegisterType:
				m.ReflectedTypes = append(m.ReflectedTypes, res.quietTypes(v)...)
			}

		case config.ExprList:
			switch entry.Key {
			case grammar.InsertResource:
				for _, e := range v {
					if src, diags := res.resource(e); !diags.HasErrors() {
						m.Resources = append(m.Resources, src.info)
					}
				}
			case grammar.AddPlugins:
				m.SubPlugins = append(m.SubPlugins, exprNames(v)...)
			case grammar.AddSystemsStartup:
				m.Systems.Startup = append(m.Systems.Startup, exprNames(v)...)
			case grammar.AddSystemsUpdate:
				m.Systems.Update = append(m.Systems.Update, exprNames(v)...)
			case grammar.AddSystemsFixedUpdate:
				m.Systems.FixedUpdate = append(m.Systems.FixedUpdate, exprNames(v)...)
			}

		case config.StateMap:
			count := 0
			for _, arm := range v {
				count += len(arm.Systems)
			}
			switch entry.Key {
			case grammar.AddSystemsOnEnter:
				m.Systems.OnEnterCount += count
			case grammar.AddSystemsOnExit:
				m.Systems.OnExitCount += count
			}
		}
	}

	ctxlog.FromContext(ctx).Debug("Metadata pass complete.",
		"resources", len(m.Resources),
		"messages", len(m.Messages),
		"states", len(m.States),
		"systems", m.TotalSystems(),
	)
	return m
}

// quietTypes resolves the names it can and drops the rest.
func (r *resolver) quietTypes(refs config.RefList) []typeinfo.TypeInfo {
	var out []typeinfo.TypeInfo
	for _, ref := range refs {
		if t, ok := r.reg.Type(ref.Name); ok {
			out = append(out, t)
		}
	}
	return out
}

func exprNames(list config.ExprList) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.String())
	}
	return out
}
