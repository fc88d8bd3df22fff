package reservation

// transitions lists the legal moves out of each status.
// Terminal statuses have no entry.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCompleted},
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition is a typed lifecycle command.
type Transition interface {
	Target() Status
	Reason() string
}

// Confirm accepts a pending reservation (instant-book, owner or payment).
type Confirm struct{}

// Cancel withdraws a pending or confirmed reservation.
type Cancel struct{ Why string }

// CheckIn marks the guest as arrived.
type CheckIn struct{}

// Complete closes a stay after check-out.
type Complete struct{}

func (Confirm) Target() Status  { return StatusConfirmed }
func (Cancel) Target() Status   { return StatusCancelled }
func (CheckIn) Target() Status  { return StatusCheckedIn }
func (Complete) Target() Status { return StatusCompleted }

func (Confirm) Reason() string  { return "" }
func (c Cancel) Reason() string { return c.Why }
func (CheckIn) Reason() string  { return "" }
func (Complete) Reason() string { return "" }

// Plan validates t against the current status and builds the conditional write.
func Plan(r *Reservation, t Transition) (StatusUpdate, error) {
	if !CanTransition(r.Status, t.Target()) {
		return StatusUpdate{}, ErrIllegalTransition
	}
	return StatusUpdate{
		ID:     r.ID,
		From:   r.Status,
		To:     t.Target(),
		Reason: t.Reason(),
	}, nil
}

// applyUpdate mutates r according to u. Stores call it after checking u.From.
func applyUpdate(r *Reservation, u StatusUpdate) {
	r.Status = u.To
	r.UpdatedAt = u.At
	if u.To == StatusCancelled {
		at := u.At
		r.CancelledAt = &at
		r.CancellationReason = u.Reason
	}
}
