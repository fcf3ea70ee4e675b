// Package accessory models the host automation framework's accessory
// directory: the persistent registry of televisions the bridge exposes.
//
// Each accessory is keyed by a deterministic identity derived from the
// configured (name, ip) pair, so restarts reuse existing entries instead
// of duplicating them. The directory stores the exposed input list and a
// cache of the last published runtime state.
//
// The Repository interface is the only surface the rest of the bridge
// sees; the SQLite implementation is wired in main.
package accessory
