// Package projectprefs persists the display preferences of the projects listing
// (default filter, view, visualization and sort) in an origin-scoped key-value store.
//
// It also carries the static sorting tables used by the listing and helpers to
// parse, mirror and localize sort specifiers. Storage backends (memory, SQLite,
// PostgreSQL, Redis) live in the storage subpackage; writes are best-effort and
// never surface storage failures to the caller.
package projectprefs
