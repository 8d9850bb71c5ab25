package ports

import (
	"context"
)

// Notifier sends out-of-band messages to order recipients, most importantly
// the delivery confirmation code. Delivery is fire-and-forget from the
// caller's perspective: the command flow never fails because a notification
// could not be sent.
type Notifier interface {
	// SendDeliveryCode delivers the confirmation code to the recipient
	// contact (email or phone).
	SendDeliveryCode(ctx context.Context, recipientContact string, code string) error
}
