package orders

// transitions is the establishment-authority subset of the order state
// machine: the only status changes this system may write. Later states
// (picked_up, on_the_way, delivered) are written by the delivery subsystem
// and appear here only as read state.
var transitions = map[Status][]Status{
	StatusPlaced:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	// Idempotent self-loop while awaiting pickup.
	StatusReady:     {StatusReady, StatusCancelled},
	StatusPickedUp:  {},
	StatusOnTheWay:  {},
	StatusDelivered: {},
	StatusCancelled: {},
}

// writable is the set of statuses an establishment may request.
var writable = map[Status]bool{
	StatusConfirmed: true,
	StatusPreparing: true,
	StatusReady:     true,
	StatusCancelled: true,
}

// CanTransition reports whether the establishment may move an order from one
// status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatus returns the natural forward step for an order, for UIs that show
// a single "advance" action. There is no forward step from ready: its
// self-loop exists only for idempotent re-marking, and everything after it
// belongs to the delivery subsystem.
func NextStatus(o Order) (Status, bool) {
	switch o.Status {
	case StatusPlaced:
		return StatusConfirmed, true
	case StatusConfirmed:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReady, true
	default:
		return "", false
	}
}
