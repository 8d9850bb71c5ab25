// Package services provides domain services that orchestrate business
// operations across multiple domain entities. It implements workflows that
// don't naturally belong to a single aggregate root.
//
// The package includes:
//   - CandidateSelector: a domain service that picks the courier pool an
//     order's assignment is broadcast to
//
// Domain services coordinate between aggregates, implementing business logic
// that spans multiple bounded contexts following Domain-Driven Design
// principles.
package services
