package host

// SystemConfig describes one system, or a chained set of systems, together
// with its run conditions and ordering constraints.
type SystemConfig struct {
	// Name is the canonical text of the expression that produced this config.
	Name string
	// Func is the system function. It is nil for chained sets.
	Func any
	// Chain holds the members of a chained set, run in order.
	Chain []SystemConfig
	// Conditions must all hold for the system to run.
	Conditions []Condition
	// Before and After name the systems this one is ordered against.
	Before []string
	After  []string
}

// IsSet reports whether the config is a chained set rather than a single system.
func (c SystemConfig) IsSet() bool {
	return c.Func == nil && c.Chain != nil
}

// Flatten returns the leaf systems in run order.
func (c SystemConfig) Flatten() []SystemConfig {
	if !c.IsSet() {
		return []SystemConfig{c}
	}
	var out []SystemConfig
	for _, member := range c.Chain {
		out = append(out, member.Flatten()...)
	}
	return out
}

// Condition is a run condition. Either Func or State is set.
type Condition struct {
	Name  string
	Func  any
	State *StateValue
}
