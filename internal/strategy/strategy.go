// Package strategy 实现状态探索的策略
package strategy

import "github.com/pkg/errors"

type Strategy[T any] interface {
	Size() int
	HasNext() bool
	Pop() (T, error)
	Push(...T) error
}

// New returns the strategy called name: "dfs" or "bfs".
func New[T any](name string) (Strategy[T], error) {
	switch name {
	case "dfs", "":
		return NewDFS[T](), nil
	case "bfs":
		return NewBFS[T](), nil
	}
	return nil, errors.Errorf("unknown strategy %q", name)
}
