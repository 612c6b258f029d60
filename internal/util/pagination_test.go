package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		page, size  int
		offset, lim int
	}{
		{"first page", 1, 20, 0, 20},
		{"third page", 3, 5, 10, 5},
		{"zero page", 0, 5, 0, 5},
		{"negative size", 2, -1, 10, DefaultPageSize},
		{"too large", 1, 500, 0, DefaultPageSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := Calculate(tc.page, tc.size)
			assert.Equal(t, tc.offset, offset)
			assert.Equal(t, tc.lim, limit)
		})
	}
}
