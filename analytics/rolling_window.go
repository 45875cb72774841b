package analytics

// RollingWindow keeps the last N values of a metric with a running sum.
type RollingWindow struct {
	size   int
	values []float64
	next   int
	count  int
	sum    float64
}

func NewRollingWindow(size int) *RollingWindow {
	if size < 1 {
		size = 1
	}
	return &RollingWindow{
		size:   size,
		values: make([]float64, size),
	}
}

// Add appends a value, evicting the oldest once the window is full.
func (rw *RollingWindow) Add(value float64) {
	if rw.count < rw.size {
		rw.count++
	} else {
		rw.sum -= rw.values[rw.next]
	}
	rw.values[rw.next] = value
	rw.sum += value
	rw.next = (rw.next + 1) % rw.size
}

func (rw *RollingWindow) Len() int { return rw.count }

func (rw *RollingWindow) Average() float64 {
	if rw.count == 0 {
		return 0.0
	}
	return rw.sum / float64(rw.count)
}

// Values returns the held values in no particular order.
func (rw *RollingWindow) Values() []float64 {
	return rw.values[:rw.count]
}
