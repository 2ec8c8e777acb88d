// Package shared holds helpers used across the sourcemaps packages.
package shared
