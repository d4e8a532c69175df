package resolver

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type node int64

func (n node) OID() int64 { return int64(n) }

func byID(a, b node) bool { return a < b }

func nodes(ids ...int64) []node {
	out := make([]node, 0, len(ids))
	for _, id := range ids {
		out = append(out, node(id))
	}
	return out
}

func seq(from, to int64) []node {
	var out []node
	for id := from; id <= to; id++ {
		out = append(out, node(id))
	}
	return out
}

// countingFetcher serves a fixed relation and counts calls.
type countingFetcher struct {
	deps  map[int64][]int64
	calls int
	ids   []int64
}

func (f *countingFetcher) Dependencies(_ context.Context, ids []int64) (map[int64][]int64, error) {
	f.calls++
	f.ids = append([]int64(nil), ids...)
	return f.deps, nil
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input []node
		deps  map[int64][]int64
		want  []node
	}{
		{
			name:  "empty relation keeps baseline order",
			input: seq(1, 10),
			deps:  map[int64][]int64{},
			want:  seq(1, 10),
		},
		{
			name:  "unsorted input is sorted first",
			input: nodes(3, 1, 2),
			want:  nodes(1, 2, 3),
		},
		{
			name:  "dependencies are pulled before dependents",
			input: seq(1, 10),
			deps:  map[int64][]int64{2: {7}, 3: {5}, 5: {8}},
			want:  nodes(1, 7, 2, 8, 5, 3, 4, 6, 9, 10),
		},
		{
			name:  "dependencies are visited in baseline order",
			input: seq(1, 5),
			deps:  map[int64][]int64{1: {5, 3, 4}},
			want:  nodes(3, 4, 5, 1, 2),
		},
		{
			name:  "edges outside the input are ignored",
			input: seq(1, 4),
			deps:  map[int64][]int64{2: {99}, 3: {4, 100}},
			want:  nodes(1, 2, 4, 3),
		},
		{
			name:  "self references are ignored",
			input: seq(1, 3),
			deps:  map[int64][]int64{2: {2}},
			want:  seq(1, 3),
		},
		{
			name:  "cycles terminate",
			input: seq(1, 4),
			deps:  map[int64][]int64{1: {2}, 2: {1}, 3: {2}},
			want:  nodes(2, 1, 3, 4),
		},
		{
			name:  "empty input",
			input: nil,
			want:  []node{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &countingFetcher{deps: tt.deps}
			got, err := Resolve(context.Background(), fetcher, tt.input, byID)
			if err != nil {
				t.Fatalf("Resolve() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
			if fetcher.calls != 1 {
				t.Errorf("expected exactly one dependency fetch, got %d", fetcher.calls)
			}
			if len(fetcher.ids) != len(tt.input) {
				t.Errorf("fetch should cover all %d objects, got %v", len(tt.input), fetcher.ids)
			}
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	input := nodes(5, 3, 1, 4, 2)
	original := append([]node(nil), input...)

	fetcher := &countingFetcher{deps: map[int64][]int64{1: {5}}}
	if _, err := Resolve(context.Background(), fetcher, input, byID); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(original, input); diff != "" {
		t.Errorf("input was mutated (-want +got):\n%s", diff)
	}
}

func TestResolvePropagatesFetchErrors(t *testing.T) {
	boom := errors.New("connection reset")
	fetcher := FetcherFunc(func(context.Context, []int64) (map[int64][]int64, error) {
		return nil, boom
	})
	if _, err := Resolve(context.Background(), fetcher, seq(1, 3), byID); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
}

// TestOrderProperties checks random acyclic relations: the output is a
// permutation, dependencies come first, and the result is deterministic.
func TestOrderProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		size := 1 + rng.Intn(25)
		input := seq(1, int64(size))
		rng.Shuffle(len(input), func(i, j int) { input[i], input[j] = input[j], input[i] })

		// Edges only point to smaller ids, so the relation is acyclic.
		deps := make(map[int64][]int64)
		for id := int64(2); id <= int64(size); id++ {
			for k := 0; k < rng.Intn(3); k++ {
				deps[id] = append(deps[id], 1+rng.Int63n(id-1))
			}
			if rng.Intn(5) == 0 {
				deps[id] = append(deps[id], int64(size)+1+rng.Int63n(10))
			}
		}

		got := Order(input, deps, byID)
		again := Order(input, deps, byID)
		if diff := cmp.Diff(got, again); diff != "" {
			t.Fatalf("round %d: Order() is not deterministic:\n%s", round, diff)
		}

		if len(got) != size {
			t.Fatalf("round %d: expected %d objects, got %d", round, size, len(got))
		}
		position := make(map[int64]int, size)
		for i, n := range got {
			if _, dup := position[n.OID()]; dup {
				t.Fatalf("round %d: %d emitted twice", round, n)
			}
			position[n.OID()] = i
		}

		for id, targets := range deps {
			for _, dep := range targets {
				depPos, inInput := position[dep]
				if !inInput {
					continue
				}
				if depPos > position[id] {
					t.Errorf("round %d: %d placed after its dependent %d in %v", round, dep, id, got)
				}
			}
		}
	}
}

func TestOrderWithoutEdgesMatchesBaseline(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for round := 0; round < 50; round++ {
		input := seq(1, int64(1+rng.Intn(30)))
		rng.Shuffle(len(input), func(i, j int) { input[i], input[j] = input[j], input[i] })

		got := Order(input, nil, byID)
		if diff := cmp.Diff(seq(1, int64(len(input))), got); diff != "" {
			t.Fatalf("round %d: mismatch (-want +got):\n%s", round, diff)
		}
	}
}
