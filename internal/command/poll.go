package command

// ByteSource is a polled serial port. machine.Serial satisfies it.
type ByteSource interface {
	Buffered() int
	ReadByte() (byte, error)
}

// PollReader turns a polled port into a blocking io.Reader. While no byte
// is buffered it calls Idle, which lets a single-goroutine firmware keep
// stepping its motors while Serve waits for input.
type PollReader struct {
	Src  ByteSource
	Idle func()
}

func (r *PollReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for r.Src.Buffered() == 0 {
		if r.Idle != nil {
			r.Idle()
		}
	}
	n := 0
	for n < len(p) && r.Src.Buffered() > 0 {
		b, err := r.Src.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}
