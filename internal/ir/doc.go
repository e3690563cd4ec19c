// Package ir provides the host-compiler-facing types for phaseflow.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps it the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Node identity is stable for the lifetime of one compilation only.
//     IDs may be reused by later compilations.
//   - PhaseIdentity equality is field-wise: two invocations of the same
//     transformation kind within one compilation are distinct identities.
//   - The sentinel kinds NoPhase and DeletedPhase are always the first two
//     entries of any phase index, even for empty compilations.
package ir
