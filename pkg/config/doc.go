// Package config loads typed configuration structs from environment
// variables (with optional .env support) and caches them per type, so every
// component reads the same parsed values regardless of initialization
// order.
package config
