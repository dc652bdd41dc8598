package agent

import (
	"errors"

	"ddogreen/internal/config"
)

// ErrNotPrivileged is returned when a real power backend is used without elevated rights
var ErrNotPrivileged = errors.New("ddogreen must run as root (Administrator on Windows) to change power settings; use power.backend: stub for a dry run")

// CheckPrivileges fails unless the process may change power settings for backend
func CheckPrivileges(backend string) error {
	if backend == config.BackendStub {
		return nil
	}
	if !isPrivileged() {
		return ErrNotPrivileged
	}
	return nil
}
