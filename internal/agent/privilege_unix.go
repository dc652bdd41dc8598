//go:build !windows

package agent

import "golang.org/x/sys/unix"

func isPrivileged() bool {
	return unix.Geteuid() == 0
}
