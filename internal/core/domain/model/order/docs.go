// Package order implements the Order aggregate root and its supporting value
// objects.
//
// An Order moves through the lifecycle Placed -> Assigned -> OutForDelivery ->
// Delivered, with Failed reachable from any non-terminal state. Transitions
// are guarded by the Status value object so invalid jumps are rejected at the
// domain level.
//
// Delivery confirmation is modeled by DeliveryCode: a single-use 4-digit code
// bound to the order while it is out for delivery. Issuing a new code
// invalidates the previous one; a successful verification clears the code and
// marks the order as delivery-verified, which is a precondition for
// completing it.
package order
