//go:build windows

package storage

import "golang.org/x/sys/windows"

// FreeSpace returns the bytes available to unprivileged callers on the
// volume containing path.
func FreeSpace(path string) (uint64, error) {
	var free uint64
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	if err := windows.GetDiskFreeSpaceEx(p, &free, nil, nil); err != nil {
		return 0, err
	}
	return free, nil
}
