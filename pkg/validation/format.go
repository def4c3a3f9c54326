// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/growth-forecast/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateCacheBackend checks if the cache backend is one of the supported backends.
func ValidateCacheBackend(backend string) error {
	switch backend {
	case constants.CacheBackendMemory, constants.CacheBackendRedis, constants.CacheBackendNone:
		return nil
	}
	return fmt.Errorf("expected cache backend of %s, %s or %s, got %s",
		constants.CacheBackendMemory, constants.CacheBackendRedis, constants.CacheBackendNone, backend)
}
