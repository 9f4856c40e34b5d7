package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageLimit(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{0, MaxPageSize},
		{-5, MaxPageSize},
		{1000, MaxPageSize},
		{1, 1},
		{25, 25},
		{MaxPageSize, MaxPageSize},
	} {
		assert.Equal(t, tc.want, PageLimit(tc.in), "limit %d", tc.in)
	}
}
