package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorStaleWrite is returned when a save carries a version older than the
// persisted one (another writer got there first).
var ErrorStaleWrite = errors.New("stale write: configuration was modified by another request")

// ErrorAlreadyGenerating is returned when a PDF generation request arrives
// while another one is in flight for the same configuration id.
var ErrorAlreadyGenerating = errors.New("already generating")

// ErrorDispatched is returned by mutators and saves against a dispatched
// (terminal) configuration.
var ErrorDispatched = errors.New("configuration has been dispatched and is immutable")

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
