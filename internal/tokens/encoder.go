package tokens

import (
	"context"
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Encoder counts tokens with a local tiktoken encoding. cl100k_base is a
// close-enough approximation for current Anthropic and OpenAI models, and
// it keeps counting exact without any network round trip.
type Encoder struct {
	enc *tiktoken.Tiktoken
}

func NewEncoder() (*Encoder, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return &Encoder{enc: enc}, nil
}

func (e *Encoder) Count(_ context.Context, text string) int {
	if text == "" {
		return 0
	}
	return len(e.enc.Encode(text, nil, nil))
}
