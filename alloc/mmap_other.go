//go:build !unix

package alloc

const mmapSupported = false

func mapSlab(int) ([]byte, error) {
	return nil, ErrUnsupported
}

func unmapSlab([]byte) error {
	return ErrUnsupported
}
