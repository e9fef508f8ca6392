//go:build nogpu

package main

func gpuEnabled() bool { return false }
