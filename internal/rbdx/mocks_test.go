package rbdx

import (
	"fmt"
	"syscall"
)

// mockProvider is a mock implementation of Provider for testing.
type mockProvider struct {
	gen        Generation
	probeErr   error
	connectErr error

	// pools maps pool id -> listing served for that pool.
	pools map[PoolID]*mockPool
	// defaultPool, if set, is served for any pool not in pools.
	defaultPool *mockPool

	connects    []ConnOptions
	clusters    []*mockCluster
	probeCalls  int
	panicOnList PoolID
}

type mockPool struct {
	openErr error
	listErr error
	images  map[string]ImageResult
}

type mockCluster struct {
	provider *mockProvider
	shutdown int
	opened   []PoolID
	closed   []PoolID
}

type mockIOCtx struct {
	cluster *mockCluster
	id      PoolID
	pool    *mockPool
}

func newMockProvider(gen Generation) *mockProvider {
	return &mockProvider{
		gen:   gen,
		pools: make(map[PoolID]*mockPool),
	}
}

func (m *mockProvider) Generation() Generation { return m.gen }

func (m *mockProvider) Probe() error {
	m.probeCalls++
	return m.probeErr
}

func (m *mockProvider) Connect(opts ConnOptions) (Cluster, error) {
	m.connects = append(m.connects, opts)
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	c := &mockCluster{provider: m}
	m.clusters = append(m.clusters, c)
	return c, nil
}

func (c *mockCluster) OpenPool(id PoolID) (Pool, error) {
	pool, ok := c.provider.pools[id]
	if !ok {
		pool = c.provider.defaultPool
	}
	if pool == nil {
		return nil, StatusError(-int(syscall.ENOENT))
	}
	if pool.openErr != nil {
		return nil, pool.openErr
	}
	c.opened = append(c.opened, id)
	return &mockIOCtx{cluster: c, id: id, pool: pool}, nil
}

func (c *mockCluster) Shutdown() {
	c.shutdown++
}

func (p *mockIOCtx) ListImages() (map[string]ImageResult, error) {
	if p.cluster.provider.panicOnList != "" && p.cluster.provider.panicOnList == p.id {
		panic(fmt.Sprintf("listing pool %s exploded", p.id))
	}
	if p.pool.listErr != nil {
		return nil, p.pool.listErr
	}
	// Hand out a copy so callers can't mutate the fixture
	out := make(map[string]ImageResult, len(p.pool.images))
	for k, v := range p.pool.images {
		out[k] = v
	}
	return out, nil
}

func (p *mockIOCtx) Close() {
	p.cluster.closed = append(p.cluster.closed, p.id)
}

// fixtureImages mirrors three images as reported by a bulk info listing.
func fixtureImages() map[string]ImageResult {
	return map[string]ImageResult{
		"aceebe99a3d1": {Info: ImageInfo{ID: "aceebe99a3d1", Name: "i1", Size: 1073741824, DU: 123, Order: 22, Features: 61}},
		"faa94050cdfd": {Info: ImageInfo{ID: "faa94050cdfd", Name: "i2", Size: 2073741824, DU: 456, Order: 22, Features: 317}},
		"fab53c8ce559": {Info: ImageInfo{ID: "fab53c8ce559", Name: "c1", Size: 3073741824, DU: 789, Order: 22, Features: 317}},
	}
}

func fixtureUsage() map[string]ImageUsage {
	return map[string]ImageUsage{
		"aceebe99a3d1": {Size: 1073741824, Capacity: 123},
		"faa94050cdfd": {Size: 2073741824, Capacity: 456},
		"fab53c8ce559": {Size: 3073741824, Capacity: 789},
	}
}
