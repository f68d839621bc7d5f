//go:build unix

package fsx

import (
	"errors"
	"syscall"
)

// errors.Is 会穿透 *os.LinkError 的 Unwrap。
func isEXDEV(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
