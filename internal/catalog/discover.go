package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/pgtrunk/pgtrunk/internal/ignore"
	"github.com/pgtrunk/pgtrunk/internal/logger"
	"github.com/pgtrunk/pgtrunk/internal/operation"
	"github.com/pgtrunk/pgtrunk/internal/registry"
	"github.com/pgtrunk/pgtrunk/internal/resolver"
	"golang.org/x/sync/errgroup"
)

// Discoverer reconstructs the live schema as an ordered list of create
// operations, one per object.
type Discoverer struct {
	Registry *registry.Registry
	Querier  Querier
	// Ignore drops objects matching its patterns; nil keeps everything.
	Ignore *ignore.Config
	// Schemas restricts discovery to the listed schemas; empty means all.
	Schemas []string
	// Concurrency bounds the probes running at once. Values below 1 run them
	// sequentially, which is required when Querier is a transaction.
	Concurrency int
}

// Discover runs every registered probe and returns the operations in
// dependency order.
func (d *Discoverer) Discover(ctx context.Context) ([]operation.Operation, error) {
	probes := d.Registry.Kinds()
	results := make([][]operation.Operation, len(probes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(d.Concurrency, 1))
	for i, probe := range probes {
		i, probe := i, probe
		g.Go(func() error {
			ops, err := d.probe(gctx, probe)
			if err != nil {
				return fmt.Errorf("failed to discover %s: %w", probe.Kind, err)
			}
			results[i] = ops
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []operation.Operation
	for _, ops := range results {
		merged = append(merged, ops...)
	}

	ordered, err := resolver.Resolve(ctx, Dependencies{Querier: d.Querier}, merged, operation.Less)
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

func (d *Discoverer) probe(ctx context.Context, probe operation.Probe) ([]operation.Operation, error) {
	rows, err := d.Querier.QueryContext(ctx, probe.Query)
	if err != nil {
		return nil, err
	}
	records, err := scanMaps(rows)
	if err != nil {
		return nil, err
	}

	ops := make([]operation.Operation, 0, len(records))
	for _, record := range records {
		op, err := d.Registry.Build(probe.Verb, record)
		if err != nil {
			return nil, fmt.Errorf("row %v: %w", record["name"], err)
		}
		if !d.keep(probe.Kind, op) {
			continue
		}
		ops = append(ops, op)
	}

	logger.Get().Debug("Discovered objects", "kind", probe.Kind, "rows", len(records), "kept", len(ops))
	return ops, nil
}

func (d *Discoverer) keep(kind string, op operation.Operation) bool {
	name := op.Name()
	if len(d.Schemas) > 0 && !slices.Contains(d.Schemas, name.Schema) {
		return false
	}
	return !d.Ignore.ShouldIgnore(kind, name)
}
