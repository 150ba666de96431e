package memhost

import (
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/typeinfo"
)

// typeSet is an insertion-ordered set of types.
type typeSet struct {
	seen  map[typeinfo.Identity]struct{}
	order []typeinfo.TypeInfo
}

func newTypeSet() *typeSet {
	return &typeSet{seen: make(map[typeinfo.Identity]struct{})}
}

func (s *typeSet) add(t typeinfo.TypeInfo) {
	if _, ok := s.seen[t.ID()]; ok {
		return
	}
	s.seen[t.ID()] = struct{}{}
	s.order = append(s.order, t)
}

func (s *typeSet) has(t typeinfo.TypeInfo) bool {
	_, ok := s.seen[t.ID()]
	return ok
}

func (s *typeSet) list() []typeinfo.TypeInfo {
	return append([]typeinfo.TypeInfo(nil), s.order...)
}

// ContainsResource reports whether a resource of type t exists.
func (a *App) ContainsResource(t typeinfo.TypeInfo) bool {
	_, ok := a.resources[t.ID()]
	return ok
}

// Resource returns the stored resource. Resources created by InitResource are pointers.
func (a *App) Resource(t typeinfo.TypeInfo) (any, bool) {
	v, ok := a.resources[t.ID()]
	return v, ok
}

// ContainsMessage reports whether a message channel of type t exists.
func (a *App) ContainsMessage(t typeinfo.TypeInfo) bool { return a.messages.has(t) }

// ContainsState reports whether t was registered as a state or sub-state.
func (a *App) ContainsState(t typeinfo.TypeInfo) bool {
	return a.states.has(t) || a.subStates.has(t)
}

// HasStateSupport reports whether StatesPlugin has been added.
func (a *App) HasStateSupport() bool { return a.stateSupport }

// Resources lists resources in first-registration order.
func (a *App) Resources() []typeinfo.TypeInfo {
	return append([]typeinfo.TypeInfo(nil), a.resourceList...)
}

// Messages lists message channels in first-registration order.
func (a *App) Messages() []typeinfo.TypeInfo { return a.messages.list() }

// States lists top-level state machines.
func (a *App) States() []typeinfo.TypeInfo { return a.states.list() }

// SubStates lists sub-states.
func (a *App) SubStates() []typeinfo.TypeInfo { return a.subStates.list() }

// ReflectedTypes lists types passed to RegisterType.
func (a *App) ReflectedTypes() []typeinfo.TypeInfo { return a.reflected.list() }

// Schedules returns every AddSystems batch in call order.
func (a *App) Schedules() []ScheduledSystems {
	return append([]ScheduledSystems(nil), a.schedules...)
}

// Systems returns the systems added to one schedule, across batches.
func (a *App) Systems(schedule host.Schedule) []host.SystemConfig {
	var out []host.SystemConfig
	for _, batch := range a.schedules {
		if batch.Schedule.String() == schedule.String() {
			out = append(out, batch.Systems...)
		}
	}
	return out
}

// Plugins returns the names of successfully added plugins in add order.
func (a *App) Plugins() []string {
	names := make([]string, 0, len(a.plugins))
	for _, p := range a.plugins {
		names = append(names, p.Name())
	}
	return names
}

// Journal returns a copy of every recorded call.
func (a *App) Journal() []Call {
	return append([]Call(nil), a.journal...)
}
