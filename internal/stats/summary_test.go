package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	in := []float64{60, 120, 30, 300}
	s := Summarize(in)

	assert.Equal(t, Summary{
		Count:  4,
		Mean:   127.5,
		Min:    30,
		Q1:     30,
		Median: 60,
		Q3:     120,
		P90:    300,
		Max:    300,
	}, s)
	assert.Equal(t, []float64{60, 120, 30, 300}, in, "input is not reordered")
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}
