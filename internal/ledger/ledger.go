// Package ledger holds the quantity and status rules shared by tasks, orders and
// line items. Nothing here performs I/O.
package ledger

import "github.com/fekuna/omnipos-fulfillment-service/internal/model"

// DeriveTaskStatus maps produced vs. required quantity to a task status.
// A zero-total task with nothing made is pending; callers delete such tasks.
func DeriveTaskStatus(made, total int) model.TaskStatus {
	switch {
	case made <= 0:
		return model.TaskStatusPending
	case made >= total:
		return model.TaskStatusCompleted
	default:
		return model.TaskStatusInProgress
	}
}

// DeriveOrderStatus maps fulfilled vs. total items to an order status.
// Archived is never derived.
func DeriveOrderStatus(fulfilled, total int) model.OrderStatus {
	switch {
	case fulfilled <= 0:
		return model.OrderStatusPending
	case fulfilled >= total:
		return model.OrderStatusFulfilled
	default:
		return model.OrderStatusInProgress
	}
}

// TaskRank orders task statuses: pending < in_progress < completed.
func TaskRank(s model.TaskStatus) int {
	switch s {
	case model.TaskStatusInProgress:
		return 1
	case model.TaskStatusCompleted:
		return 2
	default:
		return 0
	}
}

// OrderRank orders derived order statuses: pending < in_progress < fulfilled.
// Archived ranks below everything since it is not part of the progression.
func OrderRank(s model.OrderStatus) int {
	switch s {
	case model.OrderStatusPending:
		return 0
	case model.OrderStatusInProgress:
		return 1
	case model.OrderStatusFulfilled:
		return 2
	default:
		return -1
	}
}

// Room is the unmet quantity on a line.
func Room(quantity, fulfilled int) int {
	if fulfilled >= quantity {
		return 0
	}
	return quantity - fulfilled
}

// SubFloor returns a-b, never below zero.
func SubFloor(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}

// Clamp bounds v to [0, max].
func Clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// WouldExceed reports whether adding qty to made overshoots total.
func WouldExceed(made, qty, total int) bool {
	return made+qty > total
}
