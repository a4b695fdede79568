// Package validate provides structural validation for loaded data sources
// (tabular and keyed) plus point validators for common field formats.
// Validators accumulate every problem they find rather than stopping at
// the first, so a single pass reports the complete picture.
package validate
