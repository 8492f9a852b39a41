// Package tokens estimates how many LLM tokens a rendered snapshot
// will consume.
package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the cl100k_base BPE used by current chat models; a
// close enough yardstick for any of them.
const encodingName = "cl100k_base"

// Estimate counts the tokens in text. The first call fetches the
// encoding tables, so it can fail offline; callers treat an error as
// "estimate unavailable", never as a fatal condition.
func Estimate(text string) (int, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return 0, fmt.Errorf("loading %s encoding: %w", encodingName, err)
	}
	return len(enc.Encode(text, nil, nil)), nil
}
