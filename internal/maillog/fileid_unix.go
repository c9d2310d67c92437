//go:build unix

package maillog

import (
	"fmt"
	"os"
	"syscall"
)

// fileKey identifies a log file version by device, inode, size and mtime, so a
// rotation or an append produces a new key
func fileKey(path string, fi os.FileInfo) string {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return fmt.Sprintf("%s|%d|%d|%d|%d", path, st.Dev, st.Ino, fi.Size(), fi.ModTime().UnixNano())
	}
	return fmt.Sprintf("%s|%d|%d", path, fi.Size(), fi.ModTime().UnixNano())
}
