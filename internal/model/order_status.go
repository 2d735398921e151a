package model

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPlaced     OrderStatus = "placed"
	StatusConfirm    OrderStatus = "confirm"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"

	// StatusPaid is recorded in history only. It never becomes the order status.
	StatusPaid OrderStatus = "paid"
)

// IsLifecycle reports whether s is a state the order can be in.
func (s OrderStatus) IsLifecycle() bool {
	switch s {
	case StatusPlaced, StatusConfirm, StatusDelivering, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Action is a status-changing operation on an order.
type Action string

const (
	ActionConfirm   Action = "confirm"
	ActionDelivery  Action = "delivery"
	ActionDelivered Action = "delivered"
	ActionReceived  Action = "received"
	ActionCancel    Action = "cancel"
)

// Transition validates that role may apply action to an order currently in
// from, and returns the resulting status together with the statuses the
// conditional update must still observe.
func Transition(action Action, from OrderStatus, role Role) (OrderStatus, []OrderStatus, error) {
	allowed, err := AllowedFrom(action, role)
	if err != nil {
		return "", nil, err
	}
	for _, s := range allowed {
		if s == from {
			return target(action), allowed, nil
		}
	}
	return "", nil, rejection(action, from)
}

// AllowedFrom lists the statuses from which role may apply action.
func AllowedFrom(action Action, role Role) ([]OrderStatus, error) {
	switch action {
	case ActionConfirm:
		if !role.IsStaff() {
			return nil, ErrForbidden
		}
		return []OrderStatus{StatusPlaced}, nil
	case ActionDelivery:
		if !role.IsStaff() {
			return nil, ErrForbidden
		}
		return []OrderStatus{StatusConfirm}, nil
	case ActionDelivered:
		if !role.IsStaff() {
			return nil, ErrForbidden
		}
		return []OrderStatus{StatusDelivering}, nil
	case ActionReceived:
		if role != RoleCustomer {
			return nil, ErrForbidden
		}
		return []OrderStatus{StatusDelivered}, nil
	case ActionCancel:
		if role.IsStaff() {
			return []OrderStatus{StatusPlaced, StatusConfirm, StatusDelivering}, nil
		}
		if role == RoleCustomer {
			return []OrderStatus{StatusPlaced}, nil
		}
		return nil, ErrForbidden
	}
	return nil, NewValidationError("unknown order action %q", action)
}

func target(action Action) OrderStatus {
	switch action {
	case ActionConfirm:
		return StatusConfirm
	case ActionDelivery:
		return StatusDelivering
	case ActionDelivered:
		return StatusDelivered
	case ActionReceived:
		return StatusCompleted
	default:
		return StatusCancelled
	}
}

func rejection(action Action, from OrderStatus) error {
	if action == ActionCancel {
		switch from {
		case StatusConfirm:
			return NewTransitionError("order has already been confirmed, cannot cancel")
		case StatusDelivering:
			return NewTransitionError("order is being delivered, cannot cancel")
		case StatusDelivered:
			return NewTransitionError("order has already been delivered, cannot cancel")
		case StatusCompleted:
			return NewTransitionError("order has already been completed, cannot cancel")
		case StatusCancelled:
			return NewTransitionError("order has already been cancelled")
		}
		return NewTransitionError("cannot cancel an order in status " + string(from))
	}

	switch from {
	case StatusPlaced:
		return NewTransitionError("order has not been confirmed yet")
	case StatusConfirm:
		switch action {
		case ActionConfirm:
			return NewTransitionError("order has already been confirmed")
		case ActionDelivered:
			return NewTransitionError("order has not been handed to the carrier yet")
		default:
			return NewTransitionError("order has been confirmed but not shipped yet")
		}
	case StatusDelivering:
		if action == ActionReceived {
			return NewTransitionError("order is still being delivered")
		}
		return NewTransitionError("order is already being delivered")
	case StatusDelivered:
		return NewTransitionError("order has already been delivered")
	case StatusCompleted:
		return NewTransitionError("order has already been completed")
	case StatusCancelled:
		return NewTransitionError("order has been cancelled")
	}
	return NewTransitionError("cannot " + string(action) + " an order in status " + string(from))
}
