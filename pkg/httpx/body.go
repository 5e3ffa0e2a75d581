package httpx

import "io"

// MaxBodySize bounds response body reads (1MB). Scan targets are untrusted;
// an unbounded read is a memory-exhaustion vector.
const MaxBodySize int64 = 1024 * 1024

// ReadBody reads from r up to maxSize bytes. A nil reader yields an empty
// slice and no error.
func ReadBody(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// ReadBodyDefault reads from r with the MaxBodySize limit.
func ReadBodyDefault(r io.Reader) ([]byte, error) {
	return ReadBody(r, MaxBodySize)
}

// DrainAndClose consumes any remaining data and closes r so the underlying
// connection can be reused. Always returns nil for use in defer.
func DrainAndClose(r io.Reader) error {
	if r == nil {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64*1024))
	if rc, ok := r.(io.ReadCloser); ok {
		rc.Close()
	}
	return nil
}
