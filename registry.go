package downscale

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/climex/go-downscale/groupers"
	"github.com/climex/go-downscale/quantile"
	"github.com/climex/go-downscale/timeseries"
	"golang.org/x/sync/errgroup"
)

// MapperRegistry fits one quantile mapper per group key of a training series
// and applies the stored mappers to query series group by group. Each group's
// work is independent and runs as a data parallel task; the only
// serialization point is scattering results back into time order.
type MapperRegistry struct {
	grouper groupers.Grouper
	qmOpt   *quantile.Options

	mappers map[groupers.Key]*quantile.Mapper
}

func newMapperRegistry(g groupers.Grouper, opt *quantile.Options) *MapperRegistry {
	return &MapperRegistry{
		grouper: g,
		qmOpt:   opt,
	}
}

// fit fits one quantile mapper per fitting group of the training series and
// retains the fitted mappers. Any group with too few samples for a stable
// transform fails the whole fit, naming the offending key. The registry is
// left unmodified on failure.
func (r *MapperRegistry) fit(s *timeseries.Series) error {
	groups, err := r.grouper.FitGroups(s)
	if err != nil {
		return err
	}

	mappers := make(map[groupers.Key]*quantile.Mapper, len(groups))
	var mu sync.Mutex
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for _, grp := range groups {
		eg.Go(func() error {
			m, err := quantile.New(r.qmOpt)
			if err != nil {
				return err
			}
			if err := m.Fit(grp.Values); err != nil {
				return fmt.Errorf("group key %d, %w", grp.Key, err)
			}
			mu.Lock()
			mappers[grp.Key] = m
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	r.mappers = mappers
	return nil
}

// transform partitions the query series by group key, applies each key's
// stored mapper, and scatters the per-group outputs back to every sample's
// retained original position. A query key with no stored mapper is a hard
// error naming the key. The output always has exactly one value per input
// sample.
func (r *MapperRegistry) transform(s *timeseries.Series) ([]float64, error) {
	if len(r.mappers) == 0 {
		return nil, ErrNotFitted
	}

	groups := groupers.Partition(s, r.grouper)
	for _, grp := range groups {
		if _, ok := r.mappers[grp.Key]; !ok {
			return nil, fmt.Errorf("no mapper fit for group key %d, %w", grp.Key, ErrGroupKeyMismatch)
		}
	}

	out := make([]float64, s.Len())
	scattered := 0

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	var mu sync.Mutex
	for _, grp := range groups {
		eg.Go(func() error {
			mapped, err := r.mappers[grp.Key].Transform(grp.Values)
			if err != nil {
				return fmt.Errorf("group key %d, %w", grp.Key, err)
			}
			if len(mapped) != len(grp.Index) {
				return fmt.Errorf("group key %d returned %d values for %d samples, %w",
					grp.Key, len(mapped), len(grp.Index), ErrShapeViolation)
			}
			// groups partition the index so writes never overlap
			for j, idx := range grp.Index {
				out[idx] = mapped[j]
			}
			mu.Lock()
			scattered += len(grp.Index)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if scattered != s.Len() {
		return nil, fmt.Errorf("scattered %d of %d samples, %w", scattered, s.Len(), ErrShapeViolation)
	}
	return out, nil
}

// models exports the serializable fitted state of every stored mapper.
func (r *MapperRegistry) models() (map[groupers.Key]*quantile.Model, error) {
	if len(r.mappers) == 0 {
		return nil, ErrNotFitted
	}
	out := make(map[groupers.Key]*quantile.Model, len(r.mappers))
	for key, m := range r.mappers {
		qm, err := m.Model()
		if err != nil {
			return nil, fmt.Errorf("group key %d, %w", key, err)
		}
		out[key] = qm
	}
	return out, nil
}

// restore rebuilds the registry's mappers from previously serialized state.
func (r *MapperRegistry) restore(models map[groupers.Key]*quantile.Model) error {
	mappers := make(map[groupers.Key]*quantile.Mapper, len(models))
	for key, qm := range models {
		m, err := quantile.NewFromModel(qm, r.qmOpt)
		if err != nil {
			return fmt.Errorf("group key %d, %w", key, err)
		}
		mappers[key] = m
	}
	r.mappers = mappers
	return nil
}
