package ceph

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/ceph/go-ceph/rados"
	"github.com/ceph/go-ceph/rbd"
	"github.com/rs/zerolog/log"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

// EnvGeneration restricts probing to a single generation when set.
const EnvGeneration = "CEPHRBDX_GENERATION"

// Client wraps a go-ceph connection to one cluster.
type Client struct {
	conn    *rados.Conn
	cluster string
}

// Connect establishes a connection to the cluster described by opts.
// It returns a Client that must be closed via Shutdown() when done.
//
// An empty opts.ConfigFile reads the default ceph.conf search path.
func Connect(opts rbdx.ConnOptions) (*Client, error) {
	conn, err := rados.NewConnWithClusterAndUser(opts.ClusterName, opts.ClientName)
	if err != nil {
		return nil, fmt.Errorf("failed to create rados handle: %w", toStatus(err))
	}

	if opts.ConfigFile == "" {
		err = conn.ReadDefaultConfigFile()
	} else {
		err = conn.ReadConfigFile(opts.ConfigFile)
	}
	if err != nil {
		conn.Shutdown()
		return nil, fmt.Errorf("failed to read ceph config %q: %w", opts.ConfigFile, toStatus(err))
	}

	// Apply options in a stable order so failures are reproducible
	keys := make([]string, 0, len(opts.Options))
	for k := range opts.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := conn.SetConfigOption(k, opts.Options[k]); err != nil {
			conn.Shutdown()
			return nil, fmt.Errorf("failed to set %s=%s: %w", k, opts.Options[k], toStatus(err))
		}
	}

	if err := conn.Connect(); err != nil {
		conn.Shutdown()
		return nil, fmt.Errorf("failed to connect to cluster %s: %w", opts.ClusterName, toStatus(err))
	}

	log.Debug().Str("cluster", opts.ClusterName).Str("client", opts.ClientName).Msg("ceph: connected")
	return &Client{conn: conn, cluster: opts.ClusterName}, nil
}

// Shutdown disconnects from the cluster. It is safe to call Shutdown multiple times.
func (c *Client) Shutdown() {
	if c.conn == nil {
		return
	}
	c.conn.Shutdown()
	c.conn = nil
}

// FSID returns the cluster fsid.
func (c *Client) FSID() (string, error) {
	if c.conn == nil {
		return "", fmt.Errorf("client not connected")
	}
	fsid, err := c.conn.GetFSID()
	if err != nil {
		return "", fmt.Errorf("failed to get fsid: %w", toStatus(err))
	}
	return fsid, nil
}

// openIOContext opens a pool by name, or by id when the PoolID is numeric.
func (c *Client) openIOContext(pool rbdx.PoolID) (*rados.IOContext, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("client not connected")
	}

	name := pool.String()
	if id, ok := pool.Int64(); ok {
		n, err := c.conn.GetPoolByID(id)
		if err != nil {
			return nil, fmt.Errorf("failed to look up pool %d: %w", id, toStatus(err))
		}
		name = n
	}

	ioctx, err := c.conn.OpenIOContext(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool %s: %w", name, toStatus(err))
	}
	return ioctx, nil
}

// LibraryVersions reports the linked librados and librbd versions as "x.y.z".
func LibraryVersions() (radosVersion, rbdVersion string) {
	rmaj, rmin, rext := rados.Version()
	bmaj, bmin, bext := rbd.Version()
	return fmt.Sprintf("%d.%d.%d", rmaj, rmin, rext), fmt.Sprintf("%d.%d.%d", bmaj, bmin, bext)
}

// restricted reports whether EnvGeneration rules out gen.
func restricted(gen rbdx.Generation) error {
	want := os.Getenv(EnvGeneration)
	if want == "" || want == gen.String() {
		return nil
	}
	return fmt.Errorf("disabled by %s=%s", EnvGeneration, want)
}

// toStatus converts go-ceph errors that carry an errno into rbdx.StatusError,
// leaving everything else untouched.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	var coder interface{ ErrorCode() int }
	if errors.As(err, &coder) {
		if code := coder.ErrorCode(); code != 0 {
			return fmt.Errorf("%w: %w", rbdx.StatusError(code), err)
		}
	}
	return err
}
