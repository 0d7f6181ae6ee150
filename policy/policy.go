// Package policy is the authorization decision engine: pure functions over
// an authenticated identity, an action and the resolved ownership chain of
// the target resource. It holds no state and performs no I/O — callers
// resolve MenuItem→Restaurant→Owner and Order→Restaurant→Owner chains from
// the database before asking for a decision.
package policy

import (
	"errors"

	"food-ordering-api/models"
)

// ErrForbidden is returned on every policy denial. It is deliberately
// distinct from authentication failures: 401 answers "who are you",
// 403 answers "you can't do that".
var ErrForbidden = errors.New("forbidden")

// Action names every gated operation.
type Action string

const (
	ActionRestaurantCreate Action = "restaurant.create"
	ActionRestaurantUpdate Action = "restaurant.update"
	ActionRestaurantDelete Action = "restaurant.delete"
	ActionRestaurantOwned  Action = "restaurant.list_owned"
	ActionMenuManage       Action = "menu.manage"
	ActionOrderCreate      Action = "order.create"
	ActionOrderListAll     Action = "order.list_all"
	ActionOrderListOwned   Action = "order.list_owned"
	ActionOrderUpdate      Action = "order.update_status"
	ActionAdminView        Action = "admin.view"
)

// roleGate restricts each action to a required role set. Evaluated before
// any ownership check.
var roleGate = map[Action][]models.UserRole{
	ActionRestaurantCreate: {models.RoleRestaurant, models.RoleAdmin},
	ActionRestaurantUpdate: {models.RoleRestaurant, models.RoleAdmin},
	ActionRestaurantDelete: {models.RoleAdmin},
	ActionRestaurantOwned:  {models.RoleRestaurant},
	ActionMenuManage:       {models.RoleRestaurant, models.RoleAdmin},
	ActionOrderCreate:      {models.RoleCustomer},
	ActionOrderListAll:     {models.RoleAdmin},
	ActionOrderListOwned:   {models.RoleRestaurant},
	ActionOrderUpdate:      {models.RoleRestaurant, models.RoleAdmin},
	ActionAdminView:        {models.RoleAdmin},
}

// AllowRole applies the role gate for an action.
func AllowRole(user *models.User, action Action) error {
	if user == nil {
		return ErrForbidden
	}
	for _, role := range roleGate[action] {
		if user.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// AllowOwner applies the role gate, then the ownership gate: a
// restaurant-role caller must be the resolved owner of the target's
// ownership chain. Admin bypasses ownership; a customer never passes an
// ownership gate for restaurant/menu/order-management actions.
func AllowOwner(user *models.User, action Action, ownerID uint) error {
	if err := AllowRole(user, action); err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return nil
	}
	if user.Role == models.RoleRestaurant && user.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// AllowOrderRead applies the self-scope rule for reading a single order:
// the customer who placed it, the owner of its restaurant, or an admin.
func AllowOrderRead(user *models.User, orderUserID, restaurantOwnerID uint) error {
	if user == nil {
		return ErrForbidden
	}
	switch user.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCustomer:
		if user.ID == orderUserID {
			return nil
		}
	case models.RoleRestaurant:
		if user.ID == restaurantOwnerID {
			return nil
		}
	}
	return ErrForbidden
}

// AllowUserOrders applies self-scope to the user-scoped order listing:
// customers and restaurant owners may only list their own, admin any.
func AllowUserOrders(user *models.User, targetUserID uint) error {
	if user == nil {
		return ErrForbidden
	}
	if user.Role == models.RoleAdmin || user.ID == targetUserID {
		return nil
	}
	return ErrForbidden
}

// AllowTopic decides whether a connection may subscribe to a fan-out topic.
// Everyone may watch their own user topic; restaurant topics require the
// resolved owner; admin sees everything.
func AllowTopic(user *models.User, topicUserID, topicRestaurantOwnerID uint, restaurantTopic bool) error {
	if user == nil {
		return ErrForbidden
	}
	if user.Role == models.RoleAdmin {
		return nil
	}
	if restaurantTopic {
		if user.Role == models.RoleRestaurant && user.ID == topicRestaurantOwnerID {
			return nil
		}
		return ErrForbidden
	}
	if user.ID == topicUserID {
		return nil
	}
	return ErrForbidden
}
