package order

import (
	"fmt"
	"math/rand/v2"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// DeliveryCodeMin is the smallest issuable delivery code.
	DeliveryCodeMin = 1000
	// DeliveryCodeMax is the largest issuable delivery code.
	DeliveryCodeMax = 9999
)

// ErrDeliveryCodeIsNotConstructed is returned when using an improperly
// initialized DeliveryCode.
var ErrDeliveryCodeIsNotConstructed = errs.NewValueIsRequiredError(
	"delivery code must be created via NewDeliveryCode or GenerateDeliveryCode")

// DeliveryCode is a single-use 4-digit numeric code proving in-person
// delivery. It is a value object: immutable once constructed.
type DeliveryCode struct {
	value string
	guard guard.ConstructorGuard
}

// NewDeliveryCode creates a DeliveryCode from its string form. The value must
// be exactly four decimal digits in [1000, 9999].
func NewDeliveryCode(value string) (DeliveryCode, error) {
	if len(value) != 4 {
		return DeliveryCode{}, errs.NewValueIsInvalidErrorWithCause(
			"delivery code",
			fmt.Errorf("%q is not a 4-digit code", value),
		)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return DeliveryCode{}, errs.NewValueIsInvalidErrorWithCause(
				"delivery code",
				fmt.Errorf("%q is not numeric", value),
			)
		}
	}
	if value[0] == '0' {
		return DeliveryCode{}, errs.NewValueIsOutOfRangeError(
			"delivery code", value, DeliveryCodeMin, DeliveryCodeMax)
	}

	return DeliveryCode{
		value: value,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// GenerateDeliveryCode creates a random code uniformly distributed over
// [1000, 9999].
func GenerateDeliveryCode() DeliveryCode {
	n := rand.IntN(DeliveryCodeMax-DeliveryCodeMin+1) + DeliveryCodeMin //nolint:gosec // not a cryptographic secret
	return DeliveryCode{
		value: fmt.Sprintf("%04d", n),
		guard: guard.NewConstructorGuard(),
	}
}

// Validate checks that the DeliveryCode was properly constructed.
func (c DeliveryCode) Validate() error {
	return c.guard.Validate(ErrDeliveryCodeIsNotConstructed)
}

// Value returns the code as a 4-character string.
func (c DeliveryCode) Value() string {
	return c.value
}

// Matches reports whether the submitted string equals the code.
func (c DeliveryCode) Matches(submitted string) bool {
	return c.value != "" && c.value == submitted
}
