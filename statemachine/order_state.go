package statemachine

import (
	"errors"
	"fmt"

	"food-ordering-api/models"
)

// ErrInvalidTransition rejects any status move that skips states or moves
// backward. Who may request a move at all is the policy engine's business;
// this package only knows the lifecycle shape.
var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions is the authoritative lifecycle definition: a single
// forward path, with cancellation possible until the order leaves the
// kitchen. DELIVERED and CANCELLED are terminal.
var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:        {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress:     {models.StatusOutForDelivery, models.StatusCancelled},
	models.StatusOutForDelivery: {models.StatusDelivered},
	models.StatusDelivered:      {},
	models.StatusCancelled:      {},
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	return validTransitions[status]
}

// CanTransition checks whether an order may move from one state to another.
func CanTransition(from, to models.OrderStatus) error {
	for _, next := range validTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s (valid from %s: %s)",
		ErrInvalidTransition, from, to, from, describeValidFrom(from))
}

// IsTerminal reports whether no further transitions exist from status.
func IsTerminal(status models.OrderStatus) bool {
	return len(validTransitions[status]) == 0 && models.ValidStatus(status)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := validTransitions[status]
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}
