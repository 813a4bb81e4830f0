package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "Configuration"
	ErrorTypeDatabase      ErrorType = "Database"
	ErrorTypeSnapshot      ErrorType = "Snapshot"
	ErrorTypeFileSystem    ErrorType = "FileSystem"
	ErrorTypeValidation    ErrorType = "Validation"
)

// UserError represents a user-friendly error with actionable guidance
type UserError struct {
	Type      ErrorType
	Message   string
	Cause     string
	Solutions []string
	Verify    string
	Help      string
}

// Error implements the error interface
func (e *UserError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError: %s\n", e.Message))

	if e.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", e.Cause))
	}

	if len(e.Solutions) > 0 {
		sb.WriteString("\nSolutions:\n")
		for _, solution := range e.Solutions {
			sb.WriteString(fmt.Sprintf("  %s\n", solution))
		}
	}

	if e.Verify != "" {
		sb.WriteString(fmt.Sprintf("\nVerify: %s\n", e.Verify))
	}

	if e.Help != "" {
		sb.WriteString(fmt.Sprintf("Help: %s\n", e.Help))
	}

	return sb.String()
}

// Format implements fmt.Formatter for custom formatting
func (e *UserError) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprintf(f, "%s", e.Error())
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "[%s] %s", e.Type, e.Error())
		} else {
			fmt.Fprintf(f, "%s", e.Error())
		}
	}
}

// New creates a new UserError
func New(errType ErrorType, message string) *UserError {
	return &UserError{
		Type:    errType,
		Message: message,
	}
}

// WithCause adds cause information
func (e *UserError) WithCause(cause string) *UserError {
	e.Cause = cause
	return e
}

// WithSolutions adds solution steps
func (e *UserError) WithSolutions(solutions ...string) *UserError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithVerify adds verification command
func (e *UserError) WithVerify(verify string) *UserError {
	e.Verify = verify
	return e
}

// WithHelp adds help command
func (e *UserError) WithHelp(help string) *UserError {
	e.Help = help
	return e
}

// IsUserError checks if error requires user action
func IsUserError(err error) bool {
	_, ok := err.(*UserError)
	return ok
}

// GetExitCode returns appropriate exit code for error type
func GetExitCode(err error) int {
	userErr, ok := err.(*UserError)
	if !ok {
		return 1 // Generic error
	}

	switch userErr.Type {
	case ErrorTypeConfiguration:
		return 78 // EX_CONFIG
	case ErrorTypeFileSystem, ErrorTypeSnapshot:
		return 66 // EX_NOINPUT
	case ErrorTypeDatabase:
		return 69 // EX_UNAVAILABLE
	default:
		return 1
	}
}

// DatabaseConnectionError builds guidance for an unreachable MongoDB.
func DatabaseConnectionError(uri string, cause error) *UserError {
	return New(ErrorTypeDatabase, "Failed to connect to MongoDB").
		WithCause(cause.Error()).
		WithSolutions(
			fmt.Sprintf("Check that MongoDB is running and reachable at %s", uri),
			"Set SNAPMERGE_MONGO_URI or mongo.uri in the config file",
			"If the server requires auth, include credentials in the URI",
		).
		WithVerify("snapmerge status").
		WithHelp("snapmerge status --help")
}

// SnapshotNotFoundError builds guidance for a missing snapshot reference.
func SnapshotNotFoundError(ref string) *UserError {
	return New(ErrorTypeSnapshot, fmt.Sprintf("Snapshot not found: %s", ref)).
		WithSolutions(
			"Run 'snapmerge list' to see available snapshots",
			"Pass a metadata file name (backup_metadata_<stamp>.json) or a timestamp (YYYYMMDD_HHMMSS)",
			"Omit the reference to use the most recent snapshot",
		).
		WithVerify("snapmerge list").
		WithHelp("snapmerge restore --help")
}

// BackupDirectoryError builds guidance for an unusable backup root.
func BackupDirectoryError(path string, cause error) *UserError {
	return New(ErrorTypeFileSystem, fmt.Sprintf("Cannot use backup directory: %s", path)).
		WithCause(cause.Error()).
		WithSolutions(
			"Check that the directory exists and is writable",
			"Set SNAPMERGE_BACKUP_DIR or backup.directory in the config file",
		).
		WithHelp("snapmerge backup --help")
}

// ConfigurationError builds guidance for an invalid configuration value.
func ConfigurationError(message string, solutions ...string) *UserError {
	return New(ErrorTypeConfiguration, message).
		WithSolutions(solutions...).
		WithHelp("snapmerge --help")
}
