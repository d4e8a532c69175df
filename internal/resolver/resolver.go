// Package resolver orders catalog objects so that every object comes after
// the objects it depends on.
package resolver

import (
	"context"
	"fmt"
	"sort"
)

// Object is anything with a catalog identifier.
type Object interface {
	OID() int64
}

// Fetcher returns, for the given ids, the ids each one depends on.
type Fetcher interface {
	Dependencies(ctx context.Context, ids []int64) (map[int64][]int64, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ids []int64) (map[int64][]int64, error)

func (f FetcherFunc) Dependencies(ctx context.Context, ids []int64) (map[int64][]int64, error) {
	return f(ctx, ids)
}

// Resolve fetches the dependency relation of objects in one call and returns
// them in dependency order. The input slice is left untouched.
func Resolve[T Object](ctx context.Context, fetcher Fetcher, objects []T, less func(a, b T) bool) ([]T, error) {
	ids := make([]int64, 0, len(objects))
	for _, obj := range objects {
		ids = append(ids, obj.OID())
	}

	deps, err := fetcher.Dependencies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dependencies: %w", err)
	}
	return Order(objects, deps, less), nil
}

type mark int

const (
	unvisited mark = iota
	visiting
	done
)

// Order sorts a copy of objects by less and then emits them depth-first in
// post-order, so dependencies are placed before their dependents. Objects not
// constrained by any dependency keep their relative order under less.
// Dependencies on ids outside objects are ignored. Cycles terminate: an
// object reached again while it is being visited is skipped.
func Order[T Object](objects []T, deps map[int64][]int64, less func(a, b T) bool) []T {
	sorted := append([]T(nil), objects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	position := make(map[int64]int, len(sorted))
	for i, obj := range sorted {
		if _, exists := position[obj.OID()]; !exists {
			position[obj.OID()] = i
		}
	}

	marks := make([]mark, len(sorted))
	result := make([]T, 0, len(sorted))

	var visit func(i int)
	visit = func(i int) {
		if marks[i] != unvisited {
			return
		}
		marks[i] = visiting
		for _, j := range dependencyPositions(sorted[i].OID(), deps, position) {
			visit(j)
		}
		marks[i] = done
		result = append(result, sorted[i])
	}

	for i := range sorted {
		visit(i)
	}
	return result
}

// dependencyPositions maps the dependencies of id to baseline positions,
// dropping unknown ids and self references, in baseline order.
func dependencyPositions(id int64, deps map[int64][]int64, position map[int64]int) []int {
	var positions []int
	seen := make(map[int]bool)
	for _, dep := range deps[id] {
		if dep == id {
			continue
		}
		j, ok := position[dep]
		if !ok || seen[j] {
			continue
		}
		seen[j] = true
		positions = append(positions, j)
	}
	sort.Ints(positions)
	return positions
}
