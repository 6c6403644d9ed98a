// Package apperror is the error taxonomy shared by the stores, the engines and
// the transport layer.
package apperror

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidQuantity
	KindInvalidArgument
	KindExceedsCapacity
	KindConstraintViolation
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidQuantity:
		return "invalid_quantity"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindExceedsCapacity:
		return "exceeds_capacity"
	case KindConstraintViolation:
		return "constraint_violation"
	case KindBusy:
		return "busy"
	default:
		return "internal"
	}
}

// Error carries a Kind plus the i18n message id and template data used to
// render it for operators.
type Error struct {
	Kind      Kind
	MessageID string
	Data      map[string]any
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(entity, id string) error {
	return &Error{
		Kind:      KindNotFound,
		MessageID: "NotFound",
		Data:      map[string]any{"Entity": entity, "ID": id},
		Msg:       fmt.Sprintf("%s %q not found", entity, id),
	}
}

// InvalidQuantity takes the rejected value as given, so non-integer input
// can be reported verbatim.
func InvalidQuantity(qty any) error {
	return &Error{
		Kind:      KindInvalidQuantity,
		MessageID: "InvalidQuantity",
		Data:      map[string]any{"Quantity": qty},
		Msg:       fmt.Sprintf("quantity must be a positive integer, got %v", qty),
	}
}

func InvalidArgument(field string) error {
	return &Error{
		Kind:      KindInvalidArgument,
		MessageID: "InvalidArgument",
		Data:      map[string]any{"Field": field},
		Msg:       fmt.Sprintf("invalid or missing %s", field),
	}
}

func ExceedsCapacity(variantID string, made, qty, total int) error {
	return &Error{
		Kind:      KindExceedsCapacity,
		MessageID: "ExceedsCapacity",
		Data:      map[string]any{"VariantID": variantID, "Made": made, "Quantity": qty, "Total": total},
		Msg:       fmt.Sprintf("producing %d of %s would exceed total (%d of %d made)", qty, variantID, made, total),
	}
}

func ConstraintViolation(err error) error {
	return &Error{
		Kind:      KindConstraintViolation,
		MessageID: "ConstraintViolation",
		Msg:       "constraint violation",
		Err:       err,
	}
}

func Busy(key string) error {
	return &Error{
		Kind:      KindBusy,
		MessageID: "Busy",
		Data:      map[string]any{"Key": key},
		Msg:       fmt.Sprintf("system busy, please try again later (%s)", key),
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromDB converts driver constraint failures into ConstraintViolation and
// passes every other error through.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return ConstraintViolation(err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
		return ConstraintViolation(err)
	}
	return err
}
