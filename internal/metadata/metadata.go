// Package metadata holds the read-only description of a compiled plugin: what
// it registers, what it depends on, and which systems it schedules.
package metadata

import (
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Systems summarizes scheduled systems. Startup, Update and FixedUpdate hold
// the canonical text of each declared system expression.
type Systems struct {
	Startup      []string
	Update       []string
	FixedUpdate  []string
	OnEnterCount int
	OnExitCount  int
}

// Total is the number of declared systems across every schedule.
func (s Systems) Total() int {
	return len(s.Startup) + len(s.Update) + len(s.FixedUpdate) + s.OnEnterCount + s.OnExitCount
}

// PluginMetadata describes one plugin. Every list keeps declaration order and
// repeated declarations are kept. It must not be modified once built.
type PluginMetadata struct {
	Name           string
	Version        *string
	Description    *string
	Resources      []typeinfo.TypeInfo
	Messages       []typeinfo.TypeInfo
	States         []typeinfo.TypeInfo
	SubStates      []typeinfo.TypeInfo
	ReflectedTypes []typeinfo.TypeInfo
	SubPlugins     []string
	Dependencies   []string
	Systems        Systems
}

// Empty returns metadata for a plugin that declares nothing.
func Empty(name string) *PluginMetadata {
	return &PluginMetadata{Name: name}
}

// HasResource reports whether t is among the resources.
func (m *PluginMetadata) HasResource(t typeinfo.TypeInfo) bool {
	return contains(m.Resources, t)
}

// HasMessage reports whether t is among the messages.
func (m *PluginMetadata) HasMessage(t typeinfo.TypeInfo) bool {
	return contains(m.Messages, t)
}

// HasState reports whether t is among the top-level states.
func (m *PluginMetadata) HasState(t typeinfo.TypeInfo) bool {
	return contains(m.States, t)
}

// TotalSystems counts every declared system.
func (m *PluginMetadata) TotalSystems() int {
	return m.Systems.Total()
}

// DependsOn reports whether the plugin declares a dependency on name.
func (m *PluginMetadata) DependsOn(name string) bool {
	return slices.Contains(m.Dependencies, name)
}

// SemVer parses the declared version.
func (m *PluginMetadata) SemVer() (*semver.Version, error) {
	if m.Version == nil {
		return nil, errors.Newf("plugin '%s' declares no version", m.Name)
	}
	v, err := semver.NewVersion(*m.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "plugin '%s' has an invalid version %q", m.Name, *m.Version)
	}
	return v, nil
}

// SatisfiesVersion checks the declared version against a constraint such as
// ">= 1.2, < 2".
func (m *PluginMetadata) SatisfiesVersion(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, errors.Wrapf(err, "invalid version constraint %q", constraint)
	}
	v, err := m.SemVer()
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}

// HasResourceOf is HasResource for a Go type.
func HasResourceOf[T any](m *PluginMetadata) bool {
	return m.HasResource(typeinfo.Of[T]())
}

// HasMessageOf is HasMessage for a Go type.
func HasMessageOf[T any](m *PluginMetadata) bool {
	return m.HasMessage(typeinfo.Of[T]())
}

// HasStateOf is HasState for a Go type.
func HasStateOf[T any](m *PluginMetadata) bool {
	return m.HasState(typeinfo.Of[T]())
}

func contains(list []typeinfo.TypeInfo, t typeinfo.TypeInfo) bool {
	for _, item := range list {
		if item.Equal(t) {
			return true
		}
	}
	return false
}
