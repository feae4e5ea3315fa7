package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeededSkipVotes(t *testing.T) {
	cases := []struct {
		listeners int
		needed    int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 2},
		{5, 3},
		{9, 3},
		{10, 4},
		{16, 4},
		{17, 5},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.needed, NeededSkipVotes(tc.listeners), "n=%d", tc.listeners)
	}
}
