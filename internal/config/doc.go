// Package config defines the engine configuration model and its YAML
// loading, validation, and file-watching machinery.
//
// Configuration files support environment variable substitution with
// ${VAR} and ${VAR:-default} syntax, and human-readable durations
// ("30s", "5m") via the Duration type.
package config
