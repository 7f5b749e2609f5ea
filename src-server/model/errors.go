package model

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a store wraps exactly one of them.
var (
	// ErrInvalidArgument: absent entity or required field, malformed interval.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIllegalEntity: id present where it must be absent (or vice versa),
	// stale or unknown entity passed to update/delete.
	ErrIllegalEntity = errors.New("illegal entity state")
	// ErrStorage: the underlying database failed.
	ErrStorage = errors.New("storage failure")
	// ErrIntegrity: more rows matched or changed than the operation allows.
	ErrIntegrity = errors.New("internal integrity failure")
	// ErrNotFound: no row for the requested id.
	ErrNotFound = errors.New("not found")
)

// StoreError describes a failed store operation.
type StoreError struct {
	Op     string // e.g. "(*PersonStore).Update"
	Entity string // human readable entity description, may be empty
	Kind   error  // one of the Err* kinds above
	Err    error  // underlying cause, may be nil
	Msg    string // extra detail, may be empty
}

func (e *StoreError) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Entity != "" {
		s += " | entity=" + e.Entity
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *StoreError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidArg(op, format string, args ...any) error {
	return &StoreError{Op: op, Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func illegalEntity(op string, entity fmt.Stringer, format string, args ...any) error {
	return &StoreError{Op: op, Entity: describe(entity), Kind: ErrIllegalEntity, Msg: fmt.Sprintf(format, args...)}
}

func integrity(op string, entity fmt.Stringer, format string, args ...any) error {
	return &StoreError{Op: op, Entity: describe(entity), Kind: ErrIntegrity, Msg: fmt.Sprintf(format, args...)}
}

func storage(op string, entity fmt.Stringer, err error) error {
	return &StoreError{Op: op, Entity: describe(entity), Kind: ErrStorage, Err: err}
}

func notFound(op string, table string, id int64) error {
	return &StoreError{Op: op, Kind: ErrNotFound, Msg: fmt.Sprintf("%s id=%d", table, id)}
}

func describe(entity fmt.Stringer) string {
	if entity == nil {
		return ""
	}
	return entity.String()
}

// asStoreError keeps errors that already carry a kind and wraps anything else
// as a storage failure.
func asStoreError(op string, entity fmt.Stringer, err error) error {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return storage(op, entity, err)
}
