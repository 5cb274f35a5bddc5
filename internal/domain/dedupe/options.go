package dedupe

// Option configures a Window.
type Option func(*Window)

// WithMaxSize caps how many IDs are remembered. Zero or less means unbounded.
func WithMaxSize(n int) Option {
	return func(w *Window) {
		w.maxSize = n
	}
}
