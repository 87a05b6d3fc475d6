package httpapi

import "github.com/aminus007/fintrack/internal/storage/memory"

// Compile-time interface assertion for the in-memory Store against the API's
// composed storage surface.
var _ Store = (*memory.Store)(nil)
