package rbdx

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Aggregator queries image usage through one provider.
type Aggregator struct {
	provider Provider
	settings Settings
	logger   *zerolog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSettings overrides the connection settings.
func WithSettings(s Settings) Option {
	return func(a *Aggregator) {
		a.settings = s
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = &l
	}
}

// New creates an Aggregator for the given provider.
func New(p Provider, opts ...Option) *Aggregator {
	a := &Aggregator{provider: p}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Default creates an Aggregator for the process-wide selected provider.
func Default(opts ...Option) *Aggregator {
	return New(Selected().Provider, opts...)
}

// Generation returns the generation of the aggregator's provider.
func (a *Aggregator) Generation() Generation {
	return a.provider.Generation()
}

// GetImages returns the image usage of every requested pool using the
// process-wide selected provider. It never fails; see Aggregator.GetImages.
func GetImages(ctx context.Context, clusterName string, pools []PoolID) QueryResult {
	return Default().GetImages(ctx, clusterName, pools)
}

// GetImages is Query with the total-failure error logged and dropped.
// A nil ctx is treated as context.Background().
func (a *Aggregator) GetImages(ctx context.Context, clusterName string, pools []PoolID) QueryResult {
	result, _ := a.Query(ctx, clusterName, pools)
	return result
}

// Query lists the images of every requested pool.
//
// The result always holds exactly one entry per requested pool. Pools that could
// not be opened or listed get an absence marker. The returned error is non-nil
// only for a total failure (the cluster handle could not be established, or the
// listing panicked); the result is still complete in that case, with an absence
// marker for every pool that was not reached.
func (a *Aggregator) Query(ctx context.Context, clusterName string, pools []PoolID) (result QueryResult, err error) {
	logger := a.loggerFor(ctx).With().
		Str("query", uuid.NewString()).
		Str("cluster", clusterName).
		Str("generation", a.provider.Generation().String()).
		Logger()

	result = make(QueryResult, len(pools))
	if len(pools) == 0 {
		return result, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rbdx: list images panicked: %v", r)
			logger.Error().Err(err).Msg("rbdx: list images failed")
		}
		if err != nil {
			result.absent(pools, err)
		}
	}()

	opts := ConnOptionsFor(a.provider.Generation(), clusterName, a.settings)
	cluster, err := a.provider.Connect(opts)
	if err != nil {
		err = fmt.Errorf("rbdx: connect to cluster %s as %s: %w", clusterName, opts.ClientName, err)
		logger.Error().Err(err).Msg("rbdx: list images failed")
		return result, err
	}
	defer cluster.Shutdown()

	for _, pool := range pools {
		result[pool.String()] = listPool(cluster, pool, logger)
	}

	return result, nil
}

// listPool lists a single pool. Every failure is confined to the returned entry.
func listPool(cluster Cluster, pool PoolID, logger zerolog.Logger) PoolResult {
	ioctx, err := cluster.OpenPool(pool)
	if err != nil {
		logger.Error().Err(err).Str("pool", pool.String()).Int("code", StatusCode(err)).
			Msg("rbdx: open pool failed")
		return PoolResult{Err: fmt.Errorf("open pool %s: %w", pool, err)}
	}
	defer ioctx.Close()

	infos, err := ioctx.ListImages()
	if err != nil {
		logger.Error().Err(err).Str("pool", pool.String()).Int("code", StatusCode(err)).
			Msg("rbdx: list info failed")
		return PoolResult{Err: fmt.Errorf("list images in pool %s: %w", pool, err)}
	}

	images := make(map[string]ImageUsage, len(infos))
	for id, res := range infos {
		if res.Err != nil {
			logger.Error().Err(res.Err).Str("pool", pool.String()).Str("image", id).
				Int("code", StatusCode(res.Err)).Msg("rbdx: get image info failed")
			continue
		}
		images[id] = ImageUsage{
			Size:     res.Info.Size,
			Capacity: res.Info.DU,
		}
	}

	return PoolResult{Images: images}
}

func (a *Aggregator) loggerFor(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	if a.logger != nil {
		return *a.logger
	}
	return log.Logger
}
