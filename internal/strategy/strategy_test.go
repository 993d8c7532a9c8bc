package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s Strategy[int]) []int {
	var out []int
	for s.HasNext() {
		v, err := s.Pop()
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestOrder(t *testing.T) {
	testCases := []struct {
		name string
		want []int
	}{
		{"dfs", []int{3, 2, 1}},
		{"bfs", []int{1, 2, 3}},
	}
	for _, tc := range testCases {
		s, err := New[int](tc.name)
		require.NoError(t, err)
		require.NoError(t, s.Push(1, 2))
		require.NoError(t, s.Push(3))
		assert.Equal(t, 3, s.Size())
		assert.Equal(t, tc.want, drain(t, s), tc.name)

		_, err = s.Pop()
		assert.Error(t, err)
	}

	_, err := New[int]("astar")
	assert.Error(t, err)
}
