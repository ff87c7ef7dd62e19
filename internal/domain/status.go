package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned by ParseStatus for unrecognized values.
var ErrUnknownStatus = errors.New("unknown order status")

// Status is the lifecycle state of an order.
type Status string

// Order statuses. Any status may be set from any other.
const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusCompleted,
}

// Statuses returns every legal status in declaration order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// StatusNames returns the legal statuses as strings.
func StatusNames() []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus trims and uppercases raw before matching it against the enum.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}
