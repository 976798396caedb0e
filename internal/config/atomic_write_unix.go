//go:build !windows

package config

import "os"

func setTempPerm(f *os.File, perm os.FileMode) error { return f.Chmod(perm) }

func replaceFile(from, to string) error { return os.Rename(from, to) }
