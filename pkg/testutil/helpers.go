// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/growth-forecast/internal/forecast"
	"github.com/iwvelando/growth-forecast/pkg/mathutil"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// WithinCents reports whether got and want agree to the cent.
func WithinCents(got, want float64) bool {
	return mathutil.WithinTolerance(got, want, 0.01)
}
