// types/errors.go
package types

import "fmt"

// ConfigError reports a substrate.Config field that failed validation at
// construction time. It is returned, never panicked, so a
// host can surface the offending field to a user.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config field %q: %s", e.Field, e.Reason)
}

// GroupConflictError reports an attempt to bind a name already claimed by
// the other kind of group: ensure_sensor on a name already bound as an
// action, or vice versa. The call that produced this error does not mutate
// substrate state.
type GroupConflictError struct {
	Name       string
	ExistingOf string // "sensor" or "action"
	RequestOf  string // "sensor" or "action"
}

func (e *GroupConflictError) Error() string {
	return fmt.Sprintf("group %q is already bound as %s, cannot bind as %s", e.Name, e.ExistingOf, e.RequestOf)
}

// ImageError reports a malformed brain binary image found while framing it:
// magic mismatch, unsupported top-level version, a truncated chunk, or an
// LZ4 decode failure. Malformed data inside a chunk payload surfaces as the
// decoder's own error (for example wire.ErrTruncated); strings are not
// checked for valid UTF-8 and counts are not bounds-checked. Always
// surfaced, never recovered from.
type ImageError struct {
	Stage  string // e.g. "magic", "chunk UNIT", "lz4 decode"
	Reason string
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("invalid brain image at %s: %s", e.Stage, e.Reason)
}

// GpuErrorKind distinguishes why a GPU tier dispatch failed.
type GpuErrorKind int

const (
	// GpuUnavailable means no compute backend could be initialized at all
	// (no adapter, feature not supported on this host).
	GpuUnavailable GpuErrorKind = iota
	// GpuRuntimeError means an adapter was initialized but a dispatch or
	// readback failed at runtime.
	GpuRuntimeError
)

func (k GpuErrorKind) String() string {
	if k == GpuUnavailable {
		return "GpuUnavailable"
	}
	return "GpuRuntimeError"
}

// GpuError reports a GPU execution-tier failure. The caller is expected to
// treat this as a tier demotion, not a fatal error: fall back to the Scalar
// backend and keep a diagnostic string around for observers.
type GpuError struct {
	Kind   GpuErrorKind
	Reason string
}

func (e *GpuError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}
