// Package config loads memorygame settings from defaults, an optional
// config.yaml and MEMORYGAME_* environment variables, and validates them
// before any component starts. A local .env file can seed the environment
// through LoadDotEnv.
package config
