// Package stream provides a channel-backed pull stream used to surface lazy,
// finite sequences of values with a distinct terminal error outcome.
package stream

// Stream is a non-restartable producer of values. Absence of further values
// (Next returns false with a nil Err) and failure (non-nil Err) are distinct
// terminal outcomes; consumers must check Err after the loop.
type Stream[T any] struct {
	C    <-chan T
	errC <-chan error

	curr T
	err  error
}

func New[T any](c <-chan T, errC <-chan error) *Stream[T] {
	return &Stream[T]{
		C:    c,
		errC: errC,
	}
}

// Next advances the stream to the next item.
// It returns false if there are no more items or an error occurred.
func (s *Stream[T]) Next() bool {
	select {
	case event, ok := <-s.C:
		if !ok {
			// Channel closed, check for error (non-blocking)
			select {
			case err := <-s.errC:
				s.err = err
			default:
			}
			return false
		}
		s.curr = event
		return true
	case err := <-s.errC:
		s.err = err
		return false
	}
}

// Current returns the current item in the stream.
func (s *Stream[T]) Current() T {
	return s.curr
}

// Err returns the error encountered during streaming, if any.
func (s *Stream[T]) Err() error {
	return s.err
}

// Collect drains the remaining items into a slice. Items produced before a
// failure are returned alongside the terminal error.
func (s *Stream[T]) Collect() ([]T, error) {
	var items []T
	for s.Next() {
		items = append(items, s.Current())
	}
	return items, s.Err()
}
