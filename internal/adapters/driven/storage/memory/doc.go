// Package memory provides in-memory implementations of the driven ports.
// They back unit tests and single-process runs that need no persistence.
package memory
