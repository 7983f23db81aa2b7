// Package config loads, validates, and normalizes subdub's TOML
// configuration. Defaults live in defaults.go; validation rules in
// validate.go. A documented sample configuration is embedded and written by
// `subdub config init`.
package config
