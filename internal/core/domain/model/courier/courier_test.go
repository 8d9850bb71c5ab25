package courier_test

import (
	"testing"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCourier(t *testing.T) {
	t.Run("should create available courier without location", func(t *testing.T) {
		id := kernel.NewUUID()

		c, err := courier.NewCourier(id, "Alice")

		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.True(t, c.ID().IsEqual(id))
		assert.Equal(t, "Alice", c.Name())
		assert.True(t, c.IsAvailable())
		assert.Nil(t, c.Location())
	})

	t.Run("should fail with invalid UUID", func(t *testing.T) {
		var invalidID kernel.UUID

		c, err := courier.NewCourier(invalidID, "Alice")

		require.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("should fail with empty name", func(t *testing.T) {
		c, err := courier.NewCourier(kernel.NewUUID(), "")

		require.Error(t, err)
		assert.Nil(t, c)
		assert.Contains(t, err.Error(), "name")
	})
}

func TestRestoreCourier(t *testing.T) {
	t.Run("restores busy courier with location", func(t *testing.T) {
		id := kernel.NewUUID()
		loc, _ := kernel.NewLocation(40.7128, -74.0060)

		c, err := courier.RestoreCourier(id, "Bob", false, &loc)

		require.NoError(t, err)
		assert.False(t, c.IsAvailable())
		require.NotNil(t, c.Location())
		equal, err := c.Location().IsEqual(loc)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("restores courier without location", func(t *testing.T) {
		c, err := courier.RestoreCourier(kernel.NewUUID(), "Bob", true, nil)

		require.NoError(t, err)
		assert.Nil(t, c.Location())
	})

	t.Run("rejects unconstructed location", func(t *testing.T) {
		var zero kernel.Location

		_, err := courier.RestoreCourier(kernel.NewUUID(), "Bob", true, &zero)

		require.Error(t, err)
	})
}

func TestCourier_Validate(t *testing.T) {
	t.Run("nil courier fails", func(t *testing.T) {
		var c *courier.Courier
		require.ErrorIs(t, c.Validate(), courier.ErrCourierIsNotConstructed)
	})

	t.Run("zero value fails", func(t *testing.T) {
		var c courier.Courier
		require.ErrorIs(t, c.Validate(), courier.ErrCourierIsNotConstructed)
	})
}

func TestCourier_Availability(t *testing.T) {
	c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")

	c.MarkBusy()
	assert.False(t, c.IsAvailable())

	c.MarkAvailable()
	assert.True(t, c.IsAvailable())
}

func TestCourier_UpdateLocation(t *testing.T) {
	t.Run("last write wins", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")
		first, _ := kernel.NewLocation(1, 1)
		second, _ := kernel.NewLocation(2, 2)

		require.NoError(t, c.UpdateLocation(first))
		require.NoError(t, c.UpdateLocation(second))

		equal, err := c.Location().IsEqual(second)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("rejects unconstructed location", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")
		var zero kernel.Location

		require.Error(t, c.UpdateLocation(zero))
		assert.Nil(t, c.Location())
	})
}

func TestCourier_DistanceTo(t *testing.T) {
	target, _ := kernel.NewLocation(40.7128, -74.0060)

	t.Run("unknown location yields error", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")

		_, err := c.DistanceTo(target)

		require.ErrorIs(t, err, courier.ErrLocationIsUnknown)
	})

	t.Run("distance from reported location", func(t *testing.T) {
		c, _ := courier.NewCourier(kernel.NewUUID(), "Alice")
		require.NoError(t, c.UpdateLocation(target))

		d, err := c.DistanceTo(target)

		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-9)
	})
}

func TestCourier_IsEqual(t *testing.T) {
	id := kernel.NewUUID()
	c1, _ := courier.NewCourier(id, "Alice")
	c2, _ := courier.NewCourier(id, "Bob")
	c3, _ := courier.NewCourier(kernel.NewUUID(), "Alice")

	assert.True(t, c1.IsEqual(c2))
	assert.False(t, c1.IsEqual(c3))
	assert.False(t, c1.IsEqual(nil))
}
