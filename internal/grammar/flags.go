package grammar

// Test flag names accepted inside generate_tests.
const (
	TestResources    = "test_resources"
	TestMessages     = "test_messages"
	TestStates       = "test_states"
	TestDependencies = "test_dependencies"
)

// Meta field names.
const (
	MetaVersion     = "version"
	MetaDescription = "description"
)

var testFlags = []string{TestResources, TestMessages, TestStates, TestDependencies}

// TestFlagNames lists the flags accepted by generate_tests.
func TestFlagNames() []string {
	out := make([]string, len(testFlags))
	copy(out, testFlags)
	return out
}

// IsTestFlag reports whether name is a known test flag.
func IsTestFlag(name string) bool {
	for _, f := range testFlags {
		if f == name {
			return true
		}
	}
	return false
}

// IsMetaField reports whether name is a known meta field.
func IsMetaField(name string) bool {
	return name == MetaVersion || name == MetaDescription
}
