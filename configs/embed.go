// Package configs embeds the configuration template written by
// `nodeguard config init`.
package configs

import _ "embed"

// ConfigTemplate is a commented configuration file with default values.
// It is valid input for config.Load.
//
//go:embed nodeguard.example.yaml
var ConfigTemplate string
