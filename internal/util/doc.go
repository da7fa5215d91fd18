// Package util provides shared utilities for the dispatch engine:
// the project-wide error taxonomy and request context helpers.
package util
