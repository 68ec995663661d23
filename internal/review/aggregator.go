package review

import (
	"strings"

	"github.com/tildaslashalef/prreview/internal/llm"
)

// Response is the complete text of a streamed review
type Response struct {
	text string
}

// Text returns the accumulated response
func (r Response) Text() string { return r.text }

// ProgressSink receives the accumulated document after every text fragment
type ProgressSink func(partial string)

// Aggregate drains stream, concatenating fragment text in arrival order and skipping
// fragments without text. On a stream error the text received so far is returned with it.
func Aggregate(stream *llm.Stream, sink ProgressSink) (Response, Verdict, error) {
	var b strings.Builder

	for fragment, err := range stream.All() {
		if err != nil {
			return Response{text: b.String()}, Classify(b.String()), err
		}
		if !fragment.HasText {
			continue
		}

		b.WriteString(fragment.Text)
		if sink != nil {
			sink(b.String())
		}
	}

	text := b.String()
	return Response{text: text}, Classify(text), nil
}
