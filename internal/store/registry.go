// FILE: companion/internal/store/registry.go
package store

import (
	"errors"
	"fmt"
)

// Registry hives a registry store can be rooted in.
const (
	HiveCurrentUser  = "HKCU"
	HiveLocalMachine = "HKLM"
)

// Hives lists every accepted hive name.
var Hives = []string{HiveCurrentUser, HiveLocalMachine}

// ErrUnknownHive is returned for a hive name outside Hives.
var ErrUnknownHive = errors.New("unknown registry hive")

// checkHive defaults an empty hive to HKCU and rejects anything else unknown.
func checkHive(hive string) (string, error) {
	switch hive {
	case "":
		return HiveCurrentUser, nil
	case HiveCurrentUser, HiveLocalMachine:
		return hive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownHive, hive)
	}
}

// registryKeyPath returns the subkey holding the values of scope.
func registryKeyPath(root, scope string) string {
	if scope == GlobalScope {
		return root
	}
	return root + `\` + scope
}
