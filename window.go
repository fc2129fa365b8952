package welford

// window keeps samples in arrival order. With a limit, it is a ring buffer
// that overwrites its oldest entry once full; without one, it grows.
type window struct {
	buffer []float64
	start  int
	size   int
	limit  int
}

func newWindow(limit int) *window {
	w := &window{limit: limit}
	if limit > 0 {
		w.buffer = make([]float64, limit)
	}
	return w
}

// add appends e. If the window is full, the oldest entry is overwritten and
// returned with evicted set to true.
func (w *window) add(e float64) (old float64, evicted bool) {
	if w.limit == 0 {
		w.buffer = append(w.buffer, e)
		w.size++
		return 0, false
	}

	if w.size < w.limit {
		w.buffer[(w.start+w.size)%w.limit] = e
		w.size++
		return 0, false
	}

	old = w.buffer[w.start]
	w.buffer[w.start] = e
	w.start++
	w.start %= w.limit
	return old, true
}

func (w *window) at(i int) float64 {
	return w.buffer[(w.start+i)%len(w.buffer)]
}

func (w *window) len() int {
	return w.size
}

func (w *window) each(fn func(e float64)) {
	for i := 0; i < w.size; i++ {
		fn(w.at(i))
	}
}

// filter drops every entry for which keep returns false, preserving the order
// of the others, and returns the number of entries dropped.
func (w *window) filter(keep func(e float64) bool) int {
	if w.start != 0 {
		ordered := make([]float64, len(w.buffer))
		n := copy(ordered, w.buffer[w.start:])
		copy(ordered[n:], w.buffer[:w.start])
		w.buffer = ordered
		w.start = 0
	}

	n := 0
	for i := 0; i < w.size; i++ {
		if e := w.buffer[i]; keep(e) {
			w.buffer[n] = e
			n++
		}
	}
	dropped := w.size - n
	w.size = n
	if w.limit == 0 {
		w.buffer = w.buffer[:n]
	}

	return dropped
}

func (w *window) slice() []float64 {
	s := make([]float64, 0, w.size)
	w.each(func(e float64) {
		s = append(s, e)
	})
	return s
}

func (w *window) reset() {
	w.start = 0
	w.size = 0
	if w.limit == 0 {
		w.buffer = w.buffer[:0]
	}
}
