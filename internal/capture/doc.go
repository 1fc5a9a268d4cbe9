// Package capture wraps camera access behind two small pieces: device
// enumeration, which probes a bounded range of indices for usable
// cameras, and Source, which owns one opened device for the lifetime of
// a surveillance session and produces frames on demand.
package capture
