package rbdx

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Generation identifies which introspection interface a provider speaks.
// The two generations cannot be mixed within one process.
type Generation int

const (
	GenerationUnavailable Generation = iota // No usable provider
	GenerationOne                           // Pool-bound du listing
	GenerationTwo                           // Bulk image-info listing
)

// String returns the short name of the generation.
func (g Generation) String() string {
	switch g {
	case GenerationOne:
		return "v1"
	case GenerationTwo:
		return "v2"
	default:
		return "unavailable"
	}
}

// preference is the order in which generations are probed.
var preference = []Generation{GenerationTwo, GenerationOne}

// Provider is an introspection generation backed by a native client library.
type Provider interface {
	// Generation returns the generation this provider implements.
	Generation() Generation
	// Probe returns nil when the provider can be used in this process.
	Probe() error
	// Connect opens a cluster handle. The caller must Shutdown the handle.
	Connect(opts ConnOptions) (Cluster, error)
}

// Cluster is an exclusively owned connection to one storage cluster.
type Cluster interface {
	// OpenPool opens a pool-scoped I/O context. The caller must Close it.
	OpenPool(pool PoolID) (Pool, error)
	// Shutdown disconnects from the cluster.
	Shutdown()
}

// Pool is a pool-scoped I/O context with the provider's listing call bound to it.
type Pool interface {
	// ListImages lists every image in the pool. A returned error is an overall
	// listing failure; per-image failures are reported in ImageResult.Err.
	ListImages() (map[string]ImageResult, error)
	// Close releases the I/O context.
	Close()
}

// Selection records the outcome of capability selection.
type Selection struct {
	Generation Generation
	Provider   Provider
	// Probes holds the probe error of every provider that was rejected.
	Probes map[Generation]error
}

var (
	registryMu sync.Mutex
	registry   = make(map[Generation]Provider)

	selectOnce sync.Once
	selected   Selection
)

// Register makes a provider available for selection. It panics if a provider for
// the same generation is already registered, or if p reports GenerationUnavailable.
func Register(p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()

	gen := p.Generation()
	if gen != GenerationOne && gen != GenerationTwo {
		panic(fmt.Sprintf("rbdx: Register called with invalid generation %d", gen))
	}
	if _, dup := registry[gen]; dup {
		panic("rbdx: Register called twice for generation " + gen.String())
	}
	registry[gen] = p
}

// Selected returns the process-wide selection, performing it on first use.
func Selected() Selection {
	selectOnce.Do(func() {
		registryMu.Lock()
		providers := make([]Provider, 0, len(registry))
		for _, p := range registry {
			providers = append(providers, p)
		}
		registryMu.Unlock()

		selected = Select(providers...)
		for gen, err := range selected.Probes {
			log.Debug().Err(err).Str("generation", gen.String()).Msg("rbdx: generation probe failed")
		}
		log.Info().Str("generation", selected.Generation.String()).Msg("rbdx: selected introspection generation")
	})
	return selected
}

// Select picks the preferred usable provider: GenerationTwo first, then GenerationOne.
// When none probes successfully the selection is GenerationUnavailable with a
// provider whose Connect always fails with ErrUnavailable.
func Select(providers ...Provider) Selection {
	byGen := make(map[Generation]Provider, len(providers))
	for _, p := range providers {
		byGen[p.Generation()] = p
	}

	sel := Selection{Probes: make(map[Generation]error)}
	for _, gen := range preference {
		p, ok := byGen[gen]
		if !ok {
			sel.Probes[gen] = fmt.Errorf("generation %s: not registered", gen)
			continue
		}
		if err := p.Probe(); err != nil {
			sel.Probes[gen] = fmt.Errorf("generation %s: %w", gen, err)
			continue
		}
		sel.Generation = gen
		sel.Provider = p
		return sel
	}

	sel.Generation = GenerationUnavailable
	sel.Provider = unavailableProvider{}
	return sel
}

// unavailableProvider stands in when no generation could be selected.
type unavailableProvider struct{}

func (unavailableProvider) Generation() Generation { return GenerationUnavailable }

func (unavailableProvider) Probe() error { return ErrUnavailable }

func (unavailableProvider) Connect(ConnOptions) (Cluster, error) {
	return nil, ErrUnavailable
}
