package bulk

// Window is a half-open [Start, End) range over a slice.
type Window struct {
	Start int
	End   int
}

// Len returns the number of items in the window.
func (w Window) Len() int { return w.End - w.Start }

// Chunk splits n items into consecutive windows of at most size items.
// A non-positive size yields a single window.
func Chunk(n, size int) []Window {
	if n <= 0 {
		return nil
	}
	if size <= 0 || size >= n {
		return []Window{{Start: 0, End: n}}
	}
	windows := make([]Window, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		windows = append(windows, Window{Start: start, End: min(start+size, n)})
	}
	return windows
}
