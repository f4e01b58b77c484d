//go:build !linux

package threadrun

import "errors"

func pinToCPU(int) error {
	return errors.New("thread pinning is only supported on linux")
}
