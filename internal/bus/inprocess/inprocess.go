// Package inprocess is a channel-based reference implementation of the
// internal/bus capability, used so internal/driver and internal/runner can
// be fully exercised without a real broker/core process (SPEC_FULL.md
// §6.3a). EnterInitializingMode is a barrier: it returns once every
// registered federate has entered it. RequestNextStep does not wait for
// other federates: each federate advances its own clock by its period, and
// the hub only records the latest time granted to any of them.
package inprocess

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/norceresearch/helics-fmi/internal/bus"
)

var errUnsupportedCore = errors.New("inprocess: core was not created by this factory")

// Hub is the shared in-process bus: it owns the named channel table, the
// initialization barrier, and the latest grant time across every federate
// registered against it.
type Hub struct {
	mu sync.Mutex

	channels map[string]*channel

	grantTime   time.Duration
	waiting     int
	registered  int
	releaseCond *sync.Cond
	disconnected bool
}

type channel struct {
	mu    sync.Mutex
	value float64
}

// NewHub returns a fresh, empty bus hub.
func NewHub() *Hub {
	h := &Hub{channels: make(map[string]*channel)}
	h.releaseCond = sync.NewCond(&h.mu)
	return h
}

func (h *Hub) channelFor(name string) *channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.channels[name]
	if !ok {
		ch = &channel{}
		h.channels[name] = ch
	}
	return ch
}

// factory implements bus.Factory over a single shared Hub.
type factory struct {
	hub *Hub
}

// NewFactory returns a bus.Factory whose broker/core/federates all share a
// single in-process Hub.
func NewFactory() bus.Factory {
	return &factory{hub: NewHub()}
}

func (f *factory) StartBroker(ctx context.Context, initString string) (bus.Broker, error) {
	return &broker{connected: true}, nil
}

func (f *factory) StartCore(ctx context.Context, coreType, initString string) (bus.Core, error) {
	return &core{hub: f.hub, connected: true}, nil
}

func (f *factory) CreateFederate(c bus.Core, info bus.FederateInfo) (bus.ValueFederate, error) {
	ic, ok := c.(*core)
	if !ok {
		return nil, errUnsupportedCore
	}
	ic.hub.mu.Lock()
	ic.hub.registered++
	ic.hub.mu.Unlock()

	return &federate{
		hub:    ic.hub,
		name:   info.Name,
		period: time.Duration(float64(time.Second) * 0.2),
		stop:   30 * time.Second,
	}, nil
}

type broker struct {
	connected bool
}

func (b *broker) Connected() bool                       { return b.connected }
func (b *broker) SendCommand(command string) error       { return nil }
func (b *broker) Disconnect(ctx context.Context) error   { b.connected = false; return nil }
func (b *broker) ForceTerminate()                        { b.connected = false }

type core struct {
	hub       *Hub
	connected bool
}

func (c *core) Connected() bool { return c.connected }

func (c *core) DataLink(fromEndpoint, toEndpoint string) error {
	from := c.hub.channelFor(fromEndpoint)
	to := c.hub.channelFor(toEndpoint)
	// A data link points the `to` name at `from`'s channel, so a
	// subscription registered under `to` after the link reads whatever is
	// published to `from`. A subscription already registered under `to`
	// keeps the channel it was created with.
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	c.hub.channels[toEndpoint] = from
	_ = to
	return nil
}

func (c *core) LogMessage(level, message string) {}

func (c *core) Disconnect(ctx context.Context) error { c.connected = false; return nil }
func (c *core) ForceTerminate()                      { c.connected = false }

type federate struct {
	hub  *Hub
	name string

	period time.Duration
	stop   time.Duration
	clock  time.Duration

	mu            sync.Mutex
	publications  []*publication
	subscriptions []*input
}

func (fed *federate) RegisterPublication(name string) (bus.Publication, error) {
	fed.mu.Lock()
	defer fed.mu.Unlock()
	p := &publication{name: name, ch: fed.hub.channelFor(name)}
	fed.publications = append(fed.publications, p)
	return p, nil
}

func (fed *federate) RegisterSubscription(name string) (bus.Input, error) {
	fed.mu.Lock()
	defer fed.mu.Unlock()
	in := &input{name: name, ch: fed.hub.channelFor(name)}
	fed.subscriptions = append(fed.subscriptions, in)
	return in, nil
}

func (fed *federate) SetPeriod(period time.Duration) { fed.period = period }
func (fed *federate) Period() time.Duration          { return fed.period }
func (fed *federate) SetStopTime(stop time.Duration) { fed.stop = stop }
func (fed *federate) StopTime() time.Duration        { return fed.stop }

func (fed *federate) EnterInitializingMode(ctx context.Context) error {
	fed.hub.mu.Lock()
	defer fed.hub.mu.Unlock()
	fed.hub.waiting++
	for fed.hub.waiting < fed.hub.registered && !fed.hub.disconnected {
		fed.hub.releaseCond.Wait()
	}
	fed.hub.releaseCond.Broadcast()
	return nil
}

func (fed *federate) EnterExecutingMode(ctx context.Context, request bus.IterationRequest) (bus.IterationResult, error) {
	return bus.IterationComplete, nil
}

func (fed *federate) RequestNextStep(ctx context.Context, currentTime time.Duration) (time.Duration, error) {
	fed.clock = currentTime + fed.period
	if fed.clock > fed.hub.grantTime {
		fed.hub.mu.Lock()
		if fed.clock > fed.hub.grantTime {
			fed.hub.grantTime = fed.clock
		}
		fed.hub.mu.Unlock()
	}
	return fed.clock, nil
}

func (fed *federate) CurrentTime() time.Duration { return fed.clock }

func (fed *federate) Finalize(ctx context.Context) error {
	fed.hub.mu.Lock()
	fed.hub.registered--
	fed.hub.mu.Unlock()
	return nil
}

type publication struct {
	name string
	ch   *channel
}

func (p *publication) Name() string { return p.name }
func (p *publication) Publish(value float64) error {
	p.ch.mu.Lock()
	defer p.ch.mu.Unlock()
	p.ch.value = value
	return nil
}

type input struct {
	name string
	ch   *channel
}

func (in *input) Name() string { return in.name }
func (in *input) SetDefault(value float64) {
	in.ch.mu.Lock()
	defer in.ch.mu.Unlock()
	in.ch.value = value
}
func (in *input) Value() float64 {
	in.ch.mu.Lock()
	defer in.ch.mu.Unlock()
	return in.ch.value
}
