package policy

import (
	"testing"

	"food-ordering-api/models"

	"github.com/stretchr/testify/assert"
)

var (
	customer = &models.User{ID: 1, Role: models.RoleCustomer}
	owner    = &models.User{ID: 2, Role: models.RoleRestaurant}
	stranger = &models.User{ID: 3, Role: models.RoleRestaurant}
	admin    = &models.User{ID: 4, Role: models.RoleAdmin}
)

func TestRoleGate(t *testing.T) {
	assert.Error(t, AllowRole(customer, ActionRestaurantCreate))
	assert.NoError(t, AllowRole(owner, ActionRestaurantCreate))
	assert.NoError(t, AllowRole(admin, ActionRestaurantCreate))

	// Delete is admin only.
	assert.Error(t, AllowRole(owner, ActionRestaurantDelete))
	assert.NoError(t, AllowRole(admin, ActionRestaurantDelete))

	// Only customers place orders; only admins list everything.
	assert.NoError(t, AllowRole(customer, ActionOrderCreate))
	assert.Error(t, AllowRole(owner, ActionOrderCreate))
	assert.Error(t, AllowRole(customer, ActionOrderListAll))
	assert.NoError(t, AllowRole(admin, ActionOrderListAll))

	assert.Error(t, AllowRole(nil, ActionOrderCreate))
}

func TestOwnershipGate(t *testing.T) {
	const resourceOwner = 2

	// Resolved owner passes, another restaurant user does not.
	assert.NoError(t, AllowOwner(owner, ActionMenuManage, resourceOwner))
	assert.ErrorIs(t, AllowOwner(stranger, ActionMenuManage, resourceOwner), ErrForbidden)

	// Admin bypasses ownership entirely.
	assert.NoError(t, AllowOwner(admin, ActionMenuManage, resourceOwner))

	// A customer never passes an ownership gate, even as the "owner".
	assert.ErrorIs(t, AllowOwner(customer, ActionMenuManage, customer.ID), ErrForbidden)
}

func TestOrderSelfScope(t *testing.T) {
	const orderUser = 1
	const restaurantOwner = 2

	assert.NoError(t, AllowOrderRead(customer, orderUser, restaurantOwner))
	assert.NoError(t, AllowOrderRead(owner, orderUser, restaurantOwner))
	assert.NoError(t, AllowOrderRead(admin, orderUser, restaurantOwner))

	other := &models.User{ID: 9, Role: models.RoleCustomer}
	assert.ErrorIs(t, AllowOrderRead(other, orderUser, restaurantOwner), ErrForbidden)
	assert.ErrorIs(t, AllowOrderRead(stranger, orderUser, restaurantOwner), ErrForbidden)
}

func TestUserOrderListingScope(t *testing.T) {
	assert.NoError(t, AllowUserOrders(customer, customer.ID))
	assert.ErrorIs(t, AllowUserOrders(customer, 99), ErrForbidden)
	assert.NoError(t, AllowUserOrders(admin, 99))
}

func TestTopicAuthorization(t *testing.T) {
	// Own user topic is always allowed; someone else's never (non-admin).
	assert.NoError(t, AllowTopic(customer, customer.ID, 0, false))
	assert.ErrorIs(t, AllowTopic(customer, 99, 0, false), ErrForbidden)

	// Restaurant topics need the resolved owner.
	assert.NoError(t, AllowTopic(owner, 0, owner.ID, true))
	assert.ErrorIs(t, AllowTopic(stranger, 0, owner.ID, true), ErrForbidden)
	assert.ErrorIs(t, AllowTopic(customer, 0, owner.ID, true), ErrForbidden)

	// Admin sees everything.
	assert.NoError(t, AllowTopic(admin, 99, 98, true))
	assert.NoError(t, AllowTopic(admin, 99, 98, false))
}
