// Package bus defines the co-simulation bus capability (§6.3) as a set of
// Go interfaces. The bus/broker/core/federate library itself is an
// external collaborator outside this repository's scope (spec §1.b); this
// package only fixes the surface a driver or runner needs, so a real
// client library can be wired in behind these interfaces without touching
// internal/driver or internal/runner.
package bus

import (
	"context"
	"time"
)

// IterationRequest selects how EnterExecutingMode should behave when the
// bus offers an iteration before time can advance.
type IterationRequest int

const (
	IterationNone IterationRequest = iota
	IterationForce
	IterationIfNeeded
)

// IterationResult reports what the bus actually did for an
// EnterExecutingMode / iteration request.
type IterationResult int

const (
	IterationComplete IterationResult = iota
	IterationRequired
)

// FederateInfo is the subset of federate configuration the runner collects
// from the CLI or a config file (§4.7.2, §6.3).
type FederateInfo struct {
	Name            string
	CoreType        string
	CoreInitString  string
	BrokerAddress   string
	AutoBroker      bool
	BrokerInitString string
}

// Broker models the bus's broker app: start/connect/disconnect/terminate.
type Broker interface {
	Connected() bool
	SendCommand(command string) error
	Disconnect(ctx context.Context) error
	ForceTerminate()
}

// Core models the bus's core app.
type Core interface {
	Connected() bool
	// DataLink wires a publication endpoint to an input endpoint by name,
	// independent of any federate object (§4.6 "Cross-FMU wiring is
	// performed through the bus's data-link facility").
	DataLink(fromEndpoint, toEndpoint string) error
	LogMessage(level, message string)
	Disconnect(ctx context.Context) error
	ForceTerminate()
}

// Publication is a registered output channel on the bus.
type Publication interface {
	Name() string
	Publish(value float64) error
}

// Input is a registered subscription channel on the bus.
type Input interface {
	Name() string
	SetDefault(value float64)
	Value() float64
}

// ValueFederate is the per-driver handle onto the bus: registration,
// lifecycle, and per-step data movement (§6.3, §4.6).
type ValueFederate interface {
	RegisterPublication(name string) (Publication, error)
	RegisterSubscription(name string) (Input, error)

	SetPeriod(period time.Duration)
	Period() time.Duration
	SetStopTime(stop time.Duration)
	StopTime() time.Duration

	EnterInitializingMode(ctx context.Context) error
	EnterExecutingMode(ctx context.Context, request IterationRequest) (IterationResult, error)
	RequestNextStep(ctx context.Context, currentTime time.Duration) (time.Duration, error)

	CurrentTime() time.Duration
	Finalize(ctx context.Context) error
}

// Factory constructs the broker/core/federate triple a runner needs to
// bring a set of drivers online (§4.7.3 "Load").
type Factory interface {
	StartBroker(ctx context.Context, initString string) (Broker, error)
	StartCore(ctx context.Context, coreType, initString string) (Core, error)
	CreateFederate(core Core, info FederateInfo) (ValueFederate, error)
}

