package simulator

// Server is the single service station. At most one element occupies it.
type Server struct {
	busy     bool
	occupant *Element
}

// Busy returns true while an element is in service
func (s *Server) Busy() bool {
	return s.busy
}

// Occupant returns the element in service, or nil when idle
func (s *Server) Occupant() *Element {
	return s.occupant
}

// start puts e in service. The caller must have checked the server is idle.
func (s *Server) start(e *Element) {
	if s.busy {
		panic("BUG: starting service on a busy server")
	}
	e.state = StateInService
	s.busy = true
	s.occupant = e
}

// release marks the server idle and returns the element that was in service
func (s *Server) release() *Element {
	e := s.occupant
	s.busy = false
	s.occupant = nil
	return e
}

// WaitLine is a bounded FIFO of elements waiting for the server, backed by a
// ring buffer of fixed capacity.
type WaitLine struct {
	buf  []*Element
	head int
	size int
}

// NewWaitLine creates a wait line holding at most capacity elements
func NewWaitLine(capacity int) *WaitLine {
	if capacity < 0 {
		capacity = 0
	}
	return &WaitLine{buf: make([]*Element, capacity)}
}

// Len returns the number of waiting elements
func (w *WaitLine) Len() int {
	return w.size
}

// Cap returns the maximum number of waiting elements
func (w *WaitLine) Cap() int {
	return len(w.buf)
}

// IsFull returns true when no further element can be admitted
func (w *WaitLine) IsFull() bool {
	return w.size == len(w.buf)
}

// Enqueue appends e to the tail of the line
func (w *WaitLine) Enqueue(e *Element) error {
	if w.IsFull() {
		return ErrWaitLineFull
	}
	w.buf[(w.head+w.size)%len(w.buf)] = e
	w.size++
	e.state = StateWaiting
	return nil
}

// Dequeue removes and returns the head of the line, or nil if empty
func (w *WaitLine) Dequeue() *Element {
	if w.size == 0 {
		return nil
	}
	e := w.buf[w.head]
	w.buf[w.head] = nil
	w.head = (w.head + 1) % len(w.buf)
	w.size--
	return e
}

// Peek returns the head of the line without removing it
func (w *WaitLine) Peek() *Element {
	if w.size == 0 {
		return nil
	}
	return w.buf[w.head]
}

// Drain empties the line and returns its elements in FIFO order
func (w *WaitLine) Drain() []*Element {
	out := make([]*Element, 0, w.size)
	for w.size > 0 {
		out = append(out, w.Dequeue())
	}
	return out
}
