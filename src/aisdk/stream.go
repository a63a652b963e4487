package aisdk

import (
	"errors"
	"io"
	"strings"
)

// Stream is a pull-based, single-consumption sequence of text fragments from a
// streaming completion. Next returns io.EOF once the stream is exhausted.
type Stream interface {
	Next() (string, error)
	Close() error
}

// FragmentStream adapts a fixed fragment slice into a Stream. Used by tests
// and anywhere a pre-materialized response needs to look like a live stream.
type FragmentStream struct {
	fragments []string
	pos       int
	err       error
}

// NewFragmentStream creates a Stream over the given fragments.
func NewFragmentStream(fragments ...string) *FragmentStream {
	return &FragmentStream{fragments: fragments}
}

// FailAfter makes the stream return err once the fragments are exhausted,
// instead of io.EOF.
func (s *FragmentStream) FailAfter(err error) *FragmentStream {
	s.err = err
	return s
}

func (s *FragmentStream) Next() (string, error) {
	if s.pos >= len(s.fragments) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	frag := s.fragments[s.pos]
	s.pos++
	return frag, nil
}

func (s *FragmentStream) Close() error { return nil }

// CollectStream drains a stream and concatenates all fragments.
func CollectStream(stream Stream) (string, error) {
	defer stream.Close()

	var sb strings.Builder
	for {
		frag, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return sb.String(), nil
			}
			return sb.String(), err
		}
		sb.WriteString(frag)
	}
}
