// Package courier implements the Courier aggregate root.
//
// A courier is a delivery worker identified by a UUID with a human-readable
// name, an availability flag, and a last known geographic location. The
// location is nullable: it stays unset until the courier's live client
// reports a first position. Availability gates participation in assignment
// broadcasts - a courier carrying an active order is marked busy until the
// delivery completes.
package courier
