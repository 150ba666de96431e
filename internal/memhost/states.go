package memhost

import (
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/typeinfo"
)

// StatesPlugin installs state machine support.
type StatesPlugin struct{}

var _ host.Plugin = StatesPlugin{}

type stateEnabler interface {
	enableStates()
}

func (a *App) enableStates() { a.stateSupport = true }

// ID implements host.Plugin.
func (StatesPlugin) ID() typeinfo.Identity { return typeinfo.IdentityOf[StatesPlugin]() }

// Name implements host.Plugin.
func (StatesPlugin) Name() string { return "StatesPlugin" }

// Build enables state support on hosts that understand it.
func (StatesPlugin) Build(b host.Builder) error {
	if e, ok := b.(stateEnabler); ok {
		e.enableStates()
	}
	return nil
}

// Finish implements host.Plugin.
func (StatesPlugin) Finish(host.Builder) error { return nil }
