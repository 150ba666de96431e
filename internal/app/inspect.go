package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/metadata"
	"github.com/vk/plugdef/internal/typeinfo"
	"gopkg.in/yaml.v3"
)

// PluginView is the serialized form of a plugin's metadata.
type PluginView struct {
	Name           string      `json:"name" yaml:"name"`
	Version        string      `json:"version,omitempty" yaml:"version,omitempty"`
	Description    string      `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies   []string    `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Resources      []string    `json:"resources,omitempty" yaml:"resources,omitempty"`
	Messages       []string    `json:"messages,omitempty" yaml:"messages,omitempty"`
	States         []string    `json:"states,omitempty" yaml:"states,omitempty"`
	SubStates      []string    `json:"sub_states,omitempty" yaml:"sub_states,omitempty"`
	ReflectedTypes []string    `json:"reflected_types,omitempty" yaml:"reflected_types,omitempty"`
	SubPlugins     []string    `json:"sub_plugins,omitempty" yaml:"sub_plugins,omitempty"`
	Systems        SystemsView `json:"systems" yaml:"systems"`
}

// SystemsView is the serialized form of metadata.Systems.
type SystemsView struct {
	Startup      []string `json:"startup,omitempty" yaml:"startup,omitempty"`
	Update       []string `json:"update,omitempty" yaml:"update,omitempty"`
	FixedUpdate  []string `json:"fixed_update,omitempty" yaml:"fixed_update,omitempty"`
	OnEnterCount int      `json:"on_enter_count" yaml:"on_enter_count"`
	OnExitCount  int      `json:"on_exit_count" yaml:"on_exit_count"`
	Total        int      `json:"total" yaml:"total"`
}

// NewPluginView converts metadata for serialization.
func NewPluginView(m *metadata.PluginMetadata) PluginView {
	v := PluginView{
		Name:           m.Name,
		Dependencies:   m.Dependencies,
		Resources:      typeinfo.Names(m.Resources),
		Messages:       typeinfo.Names(m.Messages),
		States:         typeinfo.Names(m.States),
		SubStates:      typeinfo.Names(m.SubStates),
		ReflectedTypes: typeinfo.Names(m.ReflectedTypes),
		SubPlugins:     m.SubPlugins,
		Systems: SystemsView{
			Startup:      m.Systems.Startup,
			Update:       m.Systems.Update,
			FixedUpdate:  m.Systems.FixedUpdate,
			OnEnterCount: m.Systems.OnEnterCount,
			OnExitCount:  m.Systems.OnExitCount,
			Total:        m.TotalSystems(),
		},
	}
	if m.Version != nil {
		v.Version = *m.Version
	}
	if m.Description != nil {
		v.Description = *m.Description
	}
	return v
}

// Views returns the views of the named plugins, or of every plugin when no
// name is given, in definition order. With a configured version constraint,
// only plugins whose declared version satisfies it are kept.
func (a *App) Views(names ...string) ([]PluginView, error) {
	var selected []*metadata.PluginMetadata
	if len(names) == 0 {
		for m := range a.plugins.ListAll() {
			selected = append(selected, m)
		}
	}
	for _, name := range names {
		m, ok := a.plugins.FindByName(name)
		if !ok {
			return nil, errors.WithHintf(
				errors.Newf("no plugin named %q", name),
				"known plugins: %s", strings.Join(a.plugins.PluginNames(), ", "),
			)
		}
		selected = append(selected, m)
	}

	views := make([]PluginView, 0, len(selected))
	for _, m := range selected {
		if a.config.Requires != "" {
			ok, err := m.SatisfiesVersion(a.config.Requires)
			if err != nil {
				a.logger.Debug("Plugin excluded by version constraint.", "plugin", m.Name, "error", err)
				continue
			}
			if !ok {
				continue
			}
		}
		views = append(views, NewPluginView(m))
	}
	return views, nil
}

// Inspect writes the metadata of the named plugins, or of every plugin, in
// the configured format.
func (a *App) Inspect(ctx context.Context, names ...string) error {
	ctx = a.withLogger(ctx)
	views, err := a.Views(names...)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Inspecting plugins.", "count", len(views), "format", a.config.Format)

	switch a.config.Format {
	case FormatJSON:
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(views), "failed to encode JSON")
	case FormatTable:
		return a.writeTable(views)
	default:
		enc := yaml.NewEncoder(a.outW)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return errors.Wrap(err, "failed to encode YAML")
		}
		return errors.Wrap(enc.Close(), "failed to encode YAML")
	}
}

func (a *App) writeTable(views []PluginView) error {
	data := pterm.TableData{{"Plugin", "Version", "Depends on", "Resources", "Messages", "States", "Systems"}}
	for _, v := range views {
		data = append(data, []string{
			v.Name,
			v.Version,
			strings.Join(v.Dependencies, ", "),
			strings.Join(v.Resources, ", "),
			strings.Join(v.Messages, ", "),
			strings.Join(append(append([]string(nil), v.States...), v.SubStates...), ", "),
			strconv.Itoa(v.Systems.Total),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render table")
	}
	_, err = fmt.Fprintf(a.outW, "%s\n%d plugins, %d resources, %d systems\n",
		table, a.plugins.Len(), a.plugins.TotalResources(), a.plugins.TotalSystems())
	return err
}
