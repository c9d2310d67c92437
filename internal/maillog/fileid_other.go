//go:build !unix

package maillog

import (
	"fmt"
	"os"
)

func fileKey(path string, fi os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, fi.Size(), fi.ModTime().UnixNano())
}
