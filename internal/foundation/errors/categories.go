package errors

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Preflight conditions. Both are reported and end the run without
	// attempting any stage.
	CategoryWorkingTree ErrorCategory = "working_tree"
	CategoryAuth        ErrorCategory = "auth"

	// CategoryCommand represents a failed external command with no more
	// specific classification.
	CategoryCommand ErrorCategory = "command"

	// Pipeline stage errors.
	CategoryBuild   ErrorCategory = "build"
	CategoryStore   ErrorCategory = "store"
	CategoryRelease ErrorCategory = "release"
	CategoryMirror  ErrorCategory = "mirror"

	// CategoryFileSystem represents local workspace errors.
	CategoryFileSystem ErrorCategory = "filesystem"

	// CategoryRuntime represents runtime and infrastructure errors.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RetryStrategy indicates how an error should be handled by whoever reruns the pipeline.
// The pipeline itself never retries.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never" // Permanent failure, don't retry
	RetryUserAction RetryStrategy = "user"  // Requires user intervention (commit, log in)
)

// Well-known context keys.
const (
	ContextStage      = "stage"
	ContextChannel    = "channel"
	ContextCommand    = "command"
	ContextExitCode   = "exit_code"
	ContextPath       = "path"
	ContextRepository = "repository"
	ContextDetail     = "detail"
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// GetInt retrieves an int context value.
func (c ErrorContext) GetInt(key string) (int, bool) {
	if value, exists := c.Get(key); exists {
		if n, ok := value.(int); ok {
			return n, true
		}
	}
	return 0, false
}
