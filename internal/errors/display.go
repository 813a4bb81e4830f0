package errors

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// DisplayError formats and displays a UserError with enhanced formatting
func DisplayError(err error) {
	// Check if color should be disabled
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("SNAPMERGE_NO_COLOR") != ""

	// Also check viper configuration (set by --no-color flag)
	if viperNoColor := getViperBool("output.no_color"); viperNoColor {
		noColor = true
	}

	color.NoColor = noColor

	userErr, ok := err.(*UserError)
	if !ok {
		color.Red("Error: %v", err)
		return
	}

	colorFunc := getErrorStyle(userErr.Type)

	fmt.Fprintf(os.Stderr, "\n%s\n", colorFunc(userErr.Message))

	if userErr.Cause != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.YellowString("Cause:"), color.HiBlackString(userErr.Cause))
	}

	if len(userErr.Solutions) > 0 {
		fmt.Fprintf(os.Stderr, "\n   %s\n", color.GreenString("Solutions:"))
		for i, solution := range userErr.Solutions {
			fmt.Fprintf(os.Stderr, "   %s %s\n", color.HiBlackString(fmt.Sprintf("%d.", i+1)), solution)
		}
	}

	if userErr.Verify != "" {
		fmt.Fprintf(os.Stderr, "\n   %s %s\n", color.BlueString("Verify:"), color.HiWhiteString(userErr.Verify))
	}

	if userErr.Help != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.MagentaString("Help:"), color.HiWhiteString(userErr.Help))
	}

	fmt.Fprintln(os.Stderr)
}

// getErrorStyle returns the appropriate color function for an error type
func getErrorStyle(errType ErrorType) func(format string, a ...interface{}) string {
	switch errType {
	case ErrorTypeConfiguration:
		return color.YellowString
	case ErrorTypeDatabase:
		return color.RedString
	case ErrorTypeSnapshot:
		return color.CyanString
	case ErrorTypeFileSystem:
		return color.MagentaString
	case ErrorTypeValidation:
		return color.YellowString
	default:
		return color.RedString
	}
}

// DisplayWarning shows a warning message with appropriate formatting
func DisplayWarning(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("SNAPMERGE_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Warning: %s\n", color.YellowString(message))
}

// DisplaySuccess shows a success message with appropriate formatting
func DisplaySuccess(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("SNAPMERGE_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Success: %s\n", color.GreenString(message))
}

// getViperBool safely gets a boolean value from viper
func getViperBool(key string) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return false
}
