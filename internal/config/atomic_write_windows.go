//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
)

// Windows ACLs are left to the parent directory.
func setTempPerm(*os.File, os.FileMode) error { return nil }

func replaceFile(from, to string) error {
	src, err := windows.UTF16PtrFromString(from)
	if err != nil {
		return err
	}
	dst, err := windows.UTF16PtrFromString(to)
	if err != nil {
		return err
	}
	return windows.MoveFileEx(src, dst, windows.MOVEFILE_REPLACE_EXISTING|windows.MOVEFILE_WRITE_THROUGH)
}
