package grammar

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Key names one configuration option of a plugin definition.
type Key string

const (
	DependsOn             Key = "depends_on"
	Meta                  Key = "meta"
	InitResource          Key = "init_resource"
	InsertResource        Key = "insert_resource"
	AddMessage            Key = "add_message"
	AddPlugins            Key = "add_plugins"
	InitState             Key = "init_state"
	AddSubState           Key = "add_sub_state"
	RegisterType          Key = "register_type"
	AddSystemsStartup     Key = "add_systems_startup"
	AddSystemsUpdate      Key = "add_systems_update"
	AddSystemsFixedUpdate Key = "add_systems_fixed_update"
	AddSystemsOnEnter     Key = "add_systems_on_enter"
	AddSystemsOnExit      Key = "add_systems_on_exit"
	CustomBuild           Key = "custom_build"
	CustomFinish          Key = "custom_finish"
	GenerateTests         Key = "generate_tests"
)

// Shape is the form of value a key accepts.
type Shape int

const (
	// ShapeTypeList is a list of type names.
	ShapeTypeList Shape = iota
	// ShapeNameList is a list of plugin names.
	ShapeNameList
	// ShapeExprList is a list of value or plugin expressions.
	ShapeExprList
	// ShapeSystemList is a list of system expressions.
	ShapeSystemList
	// ShapeStateMap maps state values to lists of system expressions.
	ShapeStateMap
	// ShapeCallable is a single reference to a registered hook.
	ShapeCallable
	// ShapeMeta is the version/description map.
	ShapeMeta
	// ShapeTestFlags is a map of named booleans.
	ShapeTestFlags
)

func (s Shape) String() string {
	switch s {
	case ShapeTypeList:
		return "a list of type names"
	case ShapeNameList:
		return "a list of plugin names"
	case ShapeExprList:
		return "a list of expressions"
	case ShapeSystemList:
		return "a list of system expressions"
	case ShapeStateMap:
		return "an object mapping state values to lists of system expressions"
	case ShapeCallable:
		return "a reference to a registered hook"
	case ShapeMeta:
		return "a block or object with optional \"version\" and \"description\" strings"
	case ShapeTestFlags:
		return "a block or object of boolean test flags"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Option describes one entry of the vocabulary.
type Option struct {
	Key   Key
	Shape Shape
	// Block reports whether the key may also be written as an HCL block.
	Block bool
}

var vocabulary = []Option{
	{Key: DependsOn, Shape: ShapeNameList},
	{Key: Meta, Shape: ShapeMeta, Block: true},
	{Key: InitResource, Shape: ShapeTypeList},
	{Key: InsertResource, Shape: ShapeExprList},
	{Key: AddMessage, Shape: ShapeTypeList},
	{Key: AddPlugins, Shape: ShapeExprList},
	{Key: InitState, Shape: ShapeTypeList},
	{Key: AddSubState, Shape: ShapeTypeList},
	{Key: RegisterType, Shape: ShapeTypeList},
	{Key: AddSystemsStartup, Shape: ShapeSystemList},
	{Key: AddSystemsUpdate, Shape: ShapeSystemList},
	{Key: AddSystemsFixedUpdate, Shape: ShapeSystemList},
	{Key: AddSystemsOnEnter, Shape: ShapeStateMap},
	{Key: AddSystemsOnExit, Shape: ShapeStateMap},
	{Key: CustomBuild, Shape: ShapeCallable},
	{Key: CustomFinish, Shape: ShapeCallable},
	{Key: GenerateTests, Shape: ShapeTestFlags, Block: true},
}

var byKey = func() map[Key]Option {
	m := make(map[Key]Option, len(vocabulary))
	for _, opt := range vocabulary {
		m[opt.Key] = opt
	}
	return m
}()

// Vocabulary returns every option in vocabulary order.
func Vocabulary() []Option {
	out := make([]Option, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Lookup finds the option for a key name.
func Lookup(name string) (Option, bool) {
	opt, ok := byKey[Key(name)]
	return opt, ok
}

// Valid reports whether k is part of the vocabulary.
func (k Key) Valid() bool {
	_, ok := byKey[k]
	return ok
}

// ValidKeys returns the key names in vocabulary order.
func ValidKeys() []string {
	out := make([]string, 0, len(vocabulary))
	for _, opt := range vocabulary {
		out = append(out, string(opt.Key))
	}
	return out
}

// UnknownKeyDetail renders the message shown for an unsupported key.
func UnknownKeyDetail(name string) string {
	return fmt.Sprintf("Unknown plugin configuration option: %s\nSupported options: %s", name, strings.Join(ValidKeys(), ", "))
}

// UnknownKey reports a key outside the vocabulary.
func UnknownKey(name string, subject *hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Unknown plugin configuration option",
		Detail:   UnknownKeyDetail(name),
		Subject:  subject,
	}
}

// WrongShape reports a known key whose value has the wrong form.
func WrongShape(key Key, subject *hcl.Range) *hcl.Diagnostic {
	opt := byKey[key]
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  fmt.Sprintf("Invalid value for %q", key),
		Detail:   fmt.Sprintf("The %q option expects %s.", key, opt.Shape),
		Subject:  subject,
	}
}

// DependsOnNotFirst reports a depends_on entry that is preceded by other options.
func DependsOnNotFirst(subject *hcl.Range) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "depends_on must come first",
		Detail:   "The \"depends_on\" option must be the first option of a plugin definition, before any other option in any fragment.",
		Subject:  subject,
	}
}
