//go:build !linux

package config

import "runtime"

func affinityCPUs() int { return 0 }

func numCPU() int { return runtime.NumCPU() }
