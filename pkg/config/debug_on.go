//go:build keyedkit_debug

package config

// DebugChecks enables full invariant verification after every mutation.
const DebugChecks = true
