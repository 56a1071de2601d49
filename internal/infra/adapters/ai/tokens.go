package ai

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates how many tokens text costs.
type TokenCounter func(text string) int

// NewTokenCounter uses the tiktoken encoding of modelName, then cl100k_base,
// and finally a four-characters-per-token estimate when no encoding loads.
func NewTokenCounter(modelName string) TokenCounter {
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return approxTokens
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}
}

func approxTokens(text string) int {
	return (len(text) + 3) / 4
}
