// FILE: companion/internal/store/store.go

// Package store persists setting values shared with the OpenXR Toolkit layer.
//
// Values are addressed by a scope and a name. The empty scope is the global
// root (layer-wide options and the running application pointer); any other
// scope is an application name. Integer values are 32-bit, matching the
// DWORD values the layer reads.
//
// Stores never cache: every call reads or writes the backing medium so that
// writes made concurrently by the layer are observed. Read-modify-write
// sequences built on top of a Store are not atomic.
package store

import (
	"errors"
	"fmt"
	"strings"
)

// GlobalScope addresses values at the root of the store.
const GlobalScope = ""

var (
	// ErrUnsupported is returned when a backend is unavailable on this platform.
	ErrUnsupported = errors.New("store backend not supported on this platform")
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown store backend")
	// ErrTypeMismatch is returned when a value exists with a different type than requested.
	ErrTypeMismatch = errors.New("stored value has a different type")
)

// Store is a scoped key-value store of integers and strings.
type Store interface {
	// Int returns the value and true, or false when the value does not exist.
	Int(scope, name string) (int, bool, error)
	SetInt(scope, name string, value int) error
	// String returns the value and true, or false when the value does not exist.
	String(scope, name string) (string, bool, error)
	SetString(scope, name, value string) error
	// Delete removes one value. Deleting a missing value is not an error.
	Delete(scope, name string) error
	// DeleteScope removes every value of an application scope.
	DeleteScope(scope string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendRegistry = "registry"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Backends lists every backend name in a stable order.
var Backends = []string{BackendRegistry, BackendFile, BackendSQLite, BackendMemory}

// toDWORD truncates v to the signed 32-bit range the layer stores.
func toDWORD(v int) int {
	return int(int32(v))
}

// validateName rejects names the backends cannot represent.
func validateName(scope, name string) error {
	if name == "" {
		return fmt.Errorf("value name cannot be empty")
	}
	if strings.ContainsAny(scope, `\/`) {
		return fmt.Errorf("invalid scope %q: path separators are not allowed", scope)
	}
	return nil
}
