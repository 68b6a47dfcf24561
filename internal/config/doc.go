// Package config loads, normalizes, and validates Recap's TOML
// configuration. Defaults are applied first, then the config file, then
// environment variable fallbacks for secrets, so a bare environment with
// OPENROUTER_API_KEY set is enough to run.
package config
