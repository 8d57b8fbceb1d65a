package rbdx

import (
	"strconv"
	"time"
)

// Connection defaults.
const (
	// DefaultClientName is the client identity used for every connection.
	DefaultClientName = "client.admin"
	// DefaultMountTimeout bounds connecting to the monitors.
	DefaultMountTimeout = 5 * time.Second
	// DefaultOpTimeout bounds each OSD operation. Only applied to GenerationTwo.
	DefaultOpTimeout = 3 * time.Second
)

// Ceph configuration option names set at connect time.
const (
	OptionMountTimeout = "client_mount_timeout"
	OptionOpTimeout    = "rados_osd_op_timeout"
)

// Settings are the caller-tunable parts of a connection.
// Zero values fall back to the defaults above.
type Settings struct {
	ClientName   string        // Client identity (default: client.admin)
	ConfigFile   string        // Ceph config file; empty searches the default locations
	MountTimeout time.Duration // Monitor connect timeout
	OpTimeout    time.Duration // Per-operation timeout (GenerationTwo only)
}

// ConnOptions is everything a provider needs to open a cluster handle.
type ConnOptions struct {
	ClientName  string            // e.g. "client.admin"
	ClusterName string            // e.g. "ceph"
	ConfigFile  string            // Empty for the default search path
	Options     map[string]string // Ceph config options applied before connecting
}

// ConnOptionsFor builds the connection options for a generation.
func ConnOptionsFor(gen Generation, clusterName string, s Settings) ConnOptions {
	clientName := s.ClientName
	if clientName == "" {
		clientName = DefaultClientName
	}
	mount := s.MountTimeout
	if mount <= 0 {
		mount = DefaultMountTimeout
	}

	opts := ConnOptions{
		ClientName:  clientName,
		ClusterName: clusterName,
		ConfigFile:  s.ConfigFile,
		Options: map[string]string{
			OptionMountTimeout: seconds(mount),
		},
	}

	if gen == GenerationTwo {
		op := s.OpTimeout
		if op <= 0 {
			op = DefaultOpTimeout
		}
		opts.Options[OptionOpTimeout] = seconds(op)
	}

	return opts
}

// seconds renders a duration as whole seconds, rounding up so that sub-second
// timeouts never become 0 (which Ceph treats as "no timeout").
func seconds(d time.Duration) string {
	s := int64(d / time.Second)
	if d%time.Second != 0 {
		s++
	}
	return strconv.FormatInt(s, 10)
}
