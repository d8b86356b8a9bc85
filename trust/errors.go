package trust

import "fmt"

// ValidationError reports malformed caller input. It is the only error an
// analysis call returns; everything downstream degrades into the result.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// ConfigurationError reports invalid engine configuration. It is raised at
// construction time, never during analysis.
type ConfigurationError struct {
	Option string
	Msg    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Option, e.Msg)
}
