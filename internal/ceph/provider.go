package ceph

import (
	"fmt"

	"github.com/ceph/go-ceph/rados"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

func init() {
	rbdx.Register(InfoProvider{})
	rbdx.Register(DUProvider{})
}

// InfoProvider is the v2 generation: bulk image-info listing.
type InfoProvider struct{}

// Generation implements rbdx.Provider.
func (InfoProvider) Generation() rbdx.Generation { return rbdx.GenerationTwo }

// Probe requires librbd 1.12 (Nautilus) or newer.
func (InfoProvider) Probe() error {
	if err := restricted(rbdx.GenerationTwo); err != nil {
		return err
	}
	return atLeast(1, 12)
}

// Connect implements rbdx.Provider.
func (InfoProvider) Connect(opts rbdx.ConnOptions) (rbdx.Cluster, error) {
	c, err := Connect(opts)
	if err != nil {
		return nil, err
	}
	return &infoCluster{Client: c}, nil
}

type infoCluster struct {
	*Client
}

func (c *infoCluster) OpenPool(pool rbdx.PoolID) (rbdx.Pool, error) {
	ioctx, err := c.openIOContext(pool)
	if err != nil {
		return nil, err
	}
	return &infoPool{ioctx: ioctx}, nil
}

// infoPool is a pool opened by name or id.
type infoPool struct {
	ioctx *rados.IOContext
}

func (p *infoPool) ListImages() (map[string]rbdx.ImageResult, error) {
	return listPool(p.ioctx)
}

func (p *infoPool) Close() {
	p.ioctx.Destroy()
}

// DUProvider is the v1 generation: a du lister bound to each pool.
type DUProvider struct{}

// Generation implements rbdx.Provider.
func (DUProvider) Generation() rbdx.Generation { return rbdx.GenerationOne }

// Probe accepts any librbd 1.x.
func (DUProvider) Probe() error {
	if err := restricted(rbdx.GenerationOne); err != nil {
		return err
	}
	return atLeast(1, 0)
}

// Connect implements rbdx.Provider.
func (DUProvider) Connect(opts rbdx.ConnOptions) (rbdx.Cluster, error) {
	c, err := Connect(opts)
	if err != nil {
		return nil, err
	}
	return &duCluster{Client: c}, nil
}

type duCluster struct {
	*Client
}

// OpenPool only accepts numeric pool ids.
func (c *duCluster) OpenPool(pool rbdx.PoolID) (rbdx.Pool, error) {
	if _, ok := pool.Int64(); !ok {
		return nil, fmt.Errorf("%w: %q", rbdx.ErrPoolNotNumeric, pool)
	}
	ioctx, err := c.openIOContext(pool)
	if err != nil {
		return nil, err
	}
	return &duLister{ioctx: ioctx}, nil
}

// duLister is bound to the numeric pool it was opened for.
type duLister struct {
	ioctx *rados.IOContext
}

func (l *duLister) ListImages() (map[string]rbdx.ImageResult, error) {
	return listPool(l.ioctx)
}

func (l *duLister) Close() {
	l.ioctx.Destroy()
}
