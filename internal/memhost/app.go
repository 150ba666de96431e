package memhost

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/vk/plugdef/internal/host"
	"github.com/vk/plugdef/internal/typeinfo"
)

// Operation names recorded in the journal.
const (
	OpInitResource   = "InitResource"
	OpInsertResource = "InsertResource"
	OpAddMessage     = "AddMessage"
	OpAddPlugins     = "AddPlugins"
	OpInitState      = "InitState"
	OpAddSubState    = "AddSubState"
	OpRegisterType   = "RegisterType"
	OpAddSystems     = "AddSystems"
)

// Call is one journal record.
type Call struct {
	Op       string
	Target   string
	Schedule string
	Systems  []string
}

// ScheduledSystems is one AddSystems batch.
type ScheduledSystems struct {
	Schedule host.Schedule
	Systems  []host.SystemConfig
}

// Defaulter is implemented by resources that need more than a zero value when
// created by InitResource.
type Defaulter interface {
	SetDefaults()
}

// App is an in-memory host. The zero value is not usable; call New.
type App struct {
	resources    map[typeinfo.Identity]any
	resourceList []typeinfo.TypeInfo
	messages     *typeSet
	states       *typeSet
	subStates    *typeSet
	reflected    *typeSet
	schedules    []ScheduledSystems

	plugins  []host.Plugin
	added    map[typeinfo.Identity]struct{}
	building map[typeinfo.Identity]struct{}

	stateSupport bool
	journal      []Call
}

var _ host.Builder = (*App)(nil)

// New returns an empty App.
func New() *App {
	return &App{
		resources: make(map[typeinfo.Identity]any),
		messages:  newTypeSet(),
		states:    newTypeSet(),
		subStates: newTypeSet(),
		reflected: newTypeSet(),
		added:     make(map[typeinfo.Identity]struct{}),
		building:  make(map[typeinfo.Identity]struct{}),
	}
}

func (a *App) record(c Call) {
	a.journal = append(a.journal, c)
}

// InitResource creates a default value of t unless the resource already exists.
func (a *App) InitResource(t typeinfo.TypeInfo) {
	a.record(Call{Op: OpInitResource, Target: t.Name()})
	if _, exists := a.resources[t.ID()]; exists {
		return
	}
	rt, ok := t.ID().Type()
	if !ok {
		panic(fmt.Sprintf("memhost: resource %s has no Go type to construct", t.Name()))
	}
	ptr := reflect.New(rt)
	if d, ok := ptr.Interface().(Defaulter); ok {
		d.SetDefaults()
	}
	a.resources[t.ID()] = ptr.Interface()
	a.resourceList = append(a.resourceList, t)
}

// InsertResource stores value as the resource of type t, replacing any existing one.
func (a *App) InsertResource(t typeinfo.TypeInfo, value any) {
	a.record(Call{Op: OpInsertResource, Target: t.Name()})
	if _, exists := a.resources[t.ID()]; !exists {
		a.resourceList = append(a.resourceList, t)
	}
	a.resources[t.ID()] = value
}

// AddMessage registers a message channel.
func (a *App) AddMessage(t typeinfo.TypeInfo) {
	a.record(Call{Op: OpAddMessage, Target: t.Name()})
	a.messages.add(t)
}

// InitState registers a state machine. It panics without state support.
func (a *App) InitState(t typeinfo.TypeInfo) {
	a.record(Call{Op: OpInitState, Target: t.Name()})
	a.requireStateSupport("InitState", t)
	a.states.add(t)
}

// AddSubState registers a sub-state. It panics without state support.
func (a *App) AddSubState(t typeinfo.TypeInfo) {
	a.record(Call{Op: OpAddSubState, Target: t.Name()})
	a.requireStateSupport("AddSubState", t)
	a.subStates.add(t)
}

func (a *App) requireStateSupport(op string, t typeinfo.TypeInfo) {
	if !a.stateSupport {
		panic(fmt.Sprintf("memhost: %s(%s) requires state support; add StatesPlugin first", op, t.Name()))
	}
}

// RegisterType records a reflected type.
func (a *App) RegisterType(t typeinfo.TypeInfo) {
	a.record(Call{Op: OpRegisterType, Target: t.Name()})
	a.reflected.add(t)
}

// AddSystems stores one batch of systems for a schedule.
func (a *App) AddSystems(schedule host.Schedule, systems ...host.SystemConfig) {
	names := make([]string, 0, len(systems))
	for _, s := range systems {
		names = append(names, s.Name)
	}
	a.record(Call{Op: OpAddSystems, Schedule: schedule.String(), Systems: names})
	a.schedules = append(a.schedules, ScheduledSystems{Schedule: schedule, Systems: systems})
}

// AddPlugins builds each plugin in order. A plugin that fails to build is not
// marked as added, and the error is returned as is.
func (a *App) AddPlugins(plugins ...host.Plugin) error {
	for _, p := range plugins {
		a.record(Call{Op: OpAddPlugins, Target: p.Name()})
		id := p.ID()
		if _, dup := a.added[id]; dup {
			return errors.WithHintf(
				errors.Newf("plugin '%s' has already been added", p.Name()),
				"each plugin may only be added once per app",
			)
		}
		if _, cyc := a.building[id]; cyc {
			return errors.Newf("plugin '%s' adds itself while it is being built", p.Name())
		}

		a.building[id] = struct{}{}
		err := p.Build(a)
		delete(a.building, id)
		if err != nil {
			return err
		}
		a.added[id] = struct{}{}
		a.plugins = append(a.plugins, p)
	}
	return nil
}

// MustAddPlugins is AddPlugins that panics on error.
func (a *App) MustAddPlugins(plugins ...host.Plugin) *App {
	if err := a.AddPlugins(plugins...); err != nil {
		panic(err)
	}
	return a
}

// IsPluginAdded reports whether a plugin with the identity was built successfully.
func (a *App) IsPluginAdded(id typeinfo.Identity) bool {
	_, ok := a.added[id]
	return ok
}

// Finish runs the finish phase of every added plugin in the order they were added.
func (a *App) Finish() error {
	for _, p := range a.plugins {
		if err := p.Finish(a); err != nil {
			return err
		}
	}
	return nil
}

// AddStateSupport installs StatesPlugin unless it is already present.
func (a *App) AddStateSupport() error {
	if a.stateSupport {
		return nil
	}
	return a.AddPlugins(StatesPlugin{})
}
