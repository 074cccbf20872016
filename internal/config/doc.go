// Package config holds the runtime configuration for a11yctl: documented
// defaults, the flat Config struct populated from CLI flags, validation
// with sentinel errors, and the optional .a11yctl YAML file with per-site
// checker overrides.
package config
