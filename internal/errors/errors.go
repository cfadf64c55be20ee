package errors

import (
	"errors"
	"fmt"
)

// ErrDuplicateLead is raised when lead phone number is already registered
var ErrDuplicateLead = errors.New("lead with the same phone number already exists")

type DatastoreOp string

const (
	// OpLookup is duplicate phone number lookup
	OpLookup DatastoreOp = "lookup"
	// OpInsert is lead insert
	OpInsert DatastoreOp = "insert"
	// OpRead is full table read for export
	OpRead DatastoreOp = "read"
)

type DatastoreErr struct {
	Op  DatastoreOp
	err error
}

func (e *DatastoreErr) Error() string {
	return fmt.Sprintf("datastore %s failed - %v", e.Op, e.err)
}

func (e *DatastoreErr) Unwrap() error {
	return e.err
}

func NewDatastoreErr(op DatastoreOp, err error) error {
	return &DatastoreErr{Op: op, err: err}
}

type SerializationErr struct {
	err error
}

func (e *SerializationErr) Error() string {
	return fmt.Sprintf("failed to write csv - %v", e.err)
}

func (e *SerializationErr) Unwrap() error {
	return e.err
}

func NewSerializationErr(err error) error {
	return &SerializationErr{err: err}
}
