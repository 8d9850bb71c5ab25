// Package assignment contains the Assignment aggregate: a single order
// offered to a set of candidate couriers and resolved, through a
// race-to-accept, to exactly one of them.
//
// An assignment is created in Broadcasted status with a frozen candidate
// set. The first courier to accept wins the binding; every later accept
// observes the post-state and fails with ErrAlreadyTaken. Declines shrink
// the candidate set and reject the assignment when the set becomes empty.
// Broadcasted assignments that nobody acts on are expired by a background
// policy after a configurable timeout.
//
// Delivered, Rejected, and Expired are terminal. Re-applying the operation
// that produced a terminal state is an idempotent no-op so at-least-once
// client retries stay safe; any other operation on a terminal assignment
// fails with ErrStaleAssignment.
package assignment
