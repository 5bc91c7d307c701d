// Completion: 100% - Platform-specific module complete
//go:build linux || darwin
// +build linux darwin

package main

import "golang.org/x/sys/unix"

// mmapAnon backs an arena block with an anonymous private mapping, the
// same syscall the teacher's own generated arena runtime issues for the
// *compiled* program's arenas (see generateArenaInit in the teacher's
// arena.go) — here used for the host interpreter's own arena blocks.
func mmapAnon(size int) ([]byte, bool) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, false
	}
	return mem, true
}

func munmapAnon(mem []byte) bool {
	if mem == nil {
		return true
	}
	return unix.Munmap(mem) == nil
}
