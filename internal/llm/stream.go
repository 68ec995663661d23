package llm

import (
	"errors"
	"iter"
	"sync/atomic"
)

// ErrStreamConsumed is yielded when a Stream is iterated a second time
var ErrStreamConsumed = errors.New("response stream already consumed")

// Fragment is one incremental piece of a streamed completion
type Fragment struct {
	Text    string
	HasText bool // false for chunks that carry only metadata
}

// Stream is a single-use, ordered sequence of fragments
type Stream struct {
	seq      iter.Seq2[Fragment, error]
	consumed atomic.Bool
}

// NewStream wraps seq so that it can be ranged over once
func NewStream(seq iter.Seq2[Fragment, error]) *Stream {
	return &Stream{seq: seq}
}

// StreamOf returns a Stream over fixed fragments, mostly useful in tests
func StreamOf(fragments ...Fragment) *Stream {
	return NewStream(func(yield func(Fragment, error) bool) {
		for _, f := range fragments {
			if !yield(f, nil) {
				return
			}
		}
	})
}

// TextFragments builds fragments that all carry text
func TextFragments(texts ...string) []Fragment {
	out := make([]Fragment, len(texts))
	for i, t := range texts {
		out[i] = Fragment{Text: t, HasText: true}
	}
	return out
}

// All returns the fragments in emission order. Only the first call yields them;
// later calls yield a single ErrStreamConsumed.
func (s *Stream) All() iter.Seq2[Fragment, error] {
	return func(yield func(Fragment, error) bool) {
		if !s.consumed.CompareAndSwap(false, true) {
			yield(Fragment{}, ErrStreamConsumed)
			return
		}

		for f, err := range s.seq {
			if !yield(f, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// mapErrors returns a Stream over the same fragments whose errors pass through fn
func (s *Stream) mapErrors(fn func(error) error) *Stream {
	return NewStream(func(yield func(Fragment, error) bool) {
		for f, err := range s.All() {
			if err != nil {
				yield(f, fn(err))
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	})
}
