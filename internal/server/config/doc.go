// Package config provides server configuration for redif-server.
//
// This package defines the server configuration structure and validation:
//
//   - schema.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of addresses, sizes and enumerations
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
