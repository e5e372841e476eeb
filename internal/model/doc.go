// Package model provides the typed document model for teachsync.
//
// The document is the authoritative inventory of instructors, teaching
// modules and the software each module requires, plus an append-only audit
// log. All other internal packages import model; model imports nothing
// internal.
//
// Key design constraints:
//   - Collections keep YAML key order (insertion order) for deterministic output
//   - Ownership is stored twice (Module.InstructorID and Instructor.Modules);
//     only the store rewrites either side
//   - SoftwareRequirement.OSSupported == nil means "inherit from the module",
//     an empty non-nil slice means "explicitly none"
//   - A Document is a value snapshot: Clone before mutating a shared copy
package model
