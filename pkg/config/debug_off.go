//go:build !keyedkit_debug

package config

// DebugChecks enables full invariant verification after every mutation.
// Build with -tags keyedkit_debug to turn it on.
const DebugChecks = false
