// Package resource provides the collaborator the engines depend on but do
// not own: an arbiter for the shared pool of hardware M2M ports. §4.6 treats
// the broker as an out-of-scope collaborator behind codecclient.ResourceBroker;
// this package supplies a deployable in-memory implementation of that
// interface, grounded on the original webOS resource manager's port-set
// bookkeeping (resource/video_resource.cpp's vdec_index_list_/venc_index_list_
// and resourcefacilitator/requestor.cpp's AcquireResources/ReleaseResource),
// generalized from per-process global sets to one free-port set per
// (device type, codec) pair so concurrent decoders and encoders don't collide.
package resource

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hwcodec/mcil/codecclient"
)

// config holds Broker construction options, following device.Option's
// functional-options idiom.
type config struct {
	logger        *zap.Logger
	portsPerClass int
}

// Option configures a Broker at construction time.
type Option func(*config)

// WithLogger attaches a structured logger; defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithPortsPerClass overrides the number of simultaneous ports the broker
// will hand out for any single (device type, codec) pair (default 4,
// mirroring the small number of concurrent hardware M2M contexts a typical
// embedded SoC exposes).
func WithPortsPerClass(n int) Option {
	return func(c *config) { c.portsPerClass = n }
}

// classKey identifies one pool of interchangeable ports.
type classKey struct {
	deviceType codecclient.DeviceType
	codec      codecclient.Codec
}

// Broker is an in-memory codecclient.ResourceBroker: a fixed-size free-port
// set per (device type, codec) class, handed out on Acquire and returned on
// Release. It does not enforce any platform-wide policy (no foreground/
// background notification, no pipeline-status reporting) — those are the
// real resourcefacilitator's job, not this fake's.
type Broker struct {
	mu     sync.Mutex
	logger *zap.Logger

	portsPerClass int
	free          map[classKey][]int
	inUse         map[codecclient.ResourceToken]classKey

	nextToken uint64
}

var _ codecclient.ResourceBroker = (*Broker)(nil)

// New constructs a Broker. Every class starts with a full free-port set;
// pools are created lazily on first Acquire so an untouched class costs
// nothing.
func New(opts ...Option) *Broker {
	cfg := config{logger: zap.NewNop(), portsPerClass: 4}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Broker{
		logger:        cfg.logger,
		portsPerClass: cfg.portsPerClass,
		free:          make(map[classKey][]int),
		inUse:         make(map[codecclient.ResourceToken]classKey),
	}
}

// Acquire hands out the lowest-numbered free port for deviceType/codec,
// mirroring AddToIndexList's behavior of taking whatever index the resource
// manager assigns and tracking it in a per-class set. width/height/fps are
// accepted (matching the ResourceBroker interface and the original's
// GetSourceInfo video_info_t) but this fake performs no size-based admission
// control beyond the fixed port count.
func (b *Broker) Acquire(deviceType codecclient.DeviceType, codec codecclient.Codec, width, height, fps uint32) (codecclient.ResourceToken, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := classKey{deviceType, codec}
	ports, ok := b.free[key]
	if !ok {
		ports = make([]int, b.portsPerClass)
		for i := range ports {
			ports[i] = i
		}
		b.free[key] = ports
	}
	if len(ports) == 0 {
		return "", 0, fmt.Errorf("resource: no free port for device type %d codec %d", deviceType, codec)
	}

	sort.Ints(ports)
	port := ports[0]
	b.free[key] = ports[1:]

	b.nextToken++
	token := codecclient.ResourceToken(fmt.Sprintf("mcil-resource-%d", b.nextToken))
	b.inUse[token] = key

	b.logger.Debug("resource acquired",
		zap.Int("device_type", int(deviceType)),
		zap.Int("codec", int(codec)),
		zap.Uint32("width", width),
		zap.Uint32("height", height),
		zap.Uint32("fps", fps),
		zap.Int("port", port),
		zap.String("token", string(token)),
	)
	return token, port, nil
}

// Release returns portIndex to its class's free set, mirroring
// RemoveFromIndexList. Releasing an unknown token is an error: the original
// silently no-ops when its index set is already empty, but a fake used in
// tests should surface caller bugs rather than hide them.
func (b *Broker) Release(token codecclient.ResourceToken, portIndex int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key, ok := b.inUse[token]
	if !ok {
		return fmt.Errorf("resource: release of unknown token %q", token)
	}
	delete(b.inUse, token)
	b.free[key] = append(b.free[key], portIndex)

	b.logger.Debug("resource released",
		zap.String("token", string(token)),
		zap.Int("port", portIndex),
	)
	return nil
}

// InUseCount reports how many ports are currently checked out, for tests
// and cmd/m2mctl's status output.
func (b *Broker) InUseCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inUse)
}
