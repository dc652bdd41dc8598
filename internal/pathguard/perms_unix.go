//go:build !windows

package pathguard

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func checkWritableByOthers(path string) error {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if uint32(st.Mode)&(unix.S_IWGRP|unix.S_IWOTH) != 0 {
		return fmt.Errorf("%w: %s (mode %04o)", ErrInsecurePermissions, path, uint32(st.Mode)&0o7777)
	}
	return nil
}
