package common

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateOutputFormat checks a requested output format against the formats
// the application is configured to emit. An empty allow-list permits anything.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unknown output format %q (supported: %s)",
		format, strings.Join(supportedFormats, ", "))
}

// GetSupportedFormats exposes the configured format allow-list, for shell
// completion and help output.
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}
