//go:build unix

package alloc

import "golang.org/x/sys/unix"

const mmapSupported = true

// mapSlab maps size bytes of private anonymous memory. The kernel hands it
// out zeroed.
func mapSlab(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func unmapSlab(mem []byte) error {
	return unix.Munmap(mem)
}
