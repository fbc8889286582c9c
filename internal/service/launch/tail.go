package launch

// defaultTailSize bounds the stderr kept for diagnostics.
const defaultTailSize = 16 * 1024

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func newTailBuffer(size int) *tailBuffer {
	if size <= 0 {
		size = defaultTailSize
	}

	return &tailBuffer{
		buf: make([]byte, 0, size),
		max: size,
	}
}

// Write implements io.Writer.
func (t *tailBuffer) Write(p []byte) (int, error) {
	if len(p) >= t.max {
		t.buf = append(t.buf[:0], p[len(p)-t.max:]...)
		return len(p), nil
	}

	if overflow := len(t.buf) + len(p) - t.max; overflow > 0 {
		t.buf = append(t.buf[:0], t.buf[overflow:]...)
	}

	t.buf = append(t.buf, p...)

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
