package model

import "fmt"

// ValidationError reports a field that failed a structural or range check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// InsufficientDataError indicates the trajectory lacks the points needed to
// derive a base vector. MissingTag names the tag set that matched nothing.
type InsufficientDataError struct {
	MissingTag string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient trajectory data: no points labeled for %q", e.MissingTag)
}

// ArchetypeNotFoundError indicates the configured creativity archetype label
// is absent from the trajectory.
type ArchetypeNotFoundError struct {
	Archetype string
}

func (e *ArchetypeNotFoundError) Error() string {
	return fmt.Sprintf("creativity archetype %q not found in trajectory", e.Archetype)
}

// SchemaValidationError indicates an EfficiencySummary failed its
// required-field or numeric-range checks before persistence.
type SchemaValidationError struct {
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("summary schema validation failed: field %s: %s", e.Field, e.Reason)
}

// ChecksumMismatchError indicates a previously finalized artifact no longer
// matches its manifest digest. Raised only by verification, never by writes.
type ChecksumMismatchError struct {
	Name string
	Want string
	Got  string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: manifest %s, recomputed %s", e.Name, e.Want, e.Got)
}
