package inprocess

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/norceresearch/helics-fmi/internal/bus"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	factory := NewFactory()
	ctx := context.Background()

	core, err := factory.StartCore(ctx, "", "")
	require.NoError(t, err)
	require.True(t, core.Connected())

	fed, err := factory.CreateFederate(core, bus.FederateInfo{Name: "f0"})
	require.NoError(t, err)

	pub, err := fed.RegisterPublication("out.x")
	require.NoError(t, err)
	sub, err := fed.RegisterSubscription("out.x")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(3.5))
	require.Equal(t, 3.5, sub.Value())
}

func TestDataLinkAliasesChannels(t *testing.T) {
	factory := NewFactory()
	ctx := context.Background()

	core, err := factory.StartCore(ctx, "", "")
	require.NoError(t, err)

	fed, err := factory.CreateFederate(core, bus.FederateInfo{Name: "f0"})
	require.NoError(t, err)

	pub, err := fed.RegisterPublication("pub0")
	require.NoError(t, err)

	require.NoError(t, core.DataLink("pub0", "sub0"))

	sub, err := fed.RegisterSubscription("sub0")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(13.56))
	require.Equal(t, 13.56, sub.Value())
}

func TestCreateFederateRejectsForeignCore(t *testing.T) {
	factory := NewFactory()
	_, err := factory.CreateFederate(fakeCore{}, bus.FederateInfo{Name: "f0"})
	require.Error(t, err)
}

func TestRequestNextStepAdvancesByPeriod(t *testing.T) {
	factory := NewFactory()
	ctx := context.Background()

	core, err := factory.StartCore(ctx, "", "")
	require.NoError(t, err)
	fed, err := factory.CreateFederate(core, bus.FederateInfo{Name: "f0"})
	require.NoError(t, err)
	fed.SetPeriod(100 * time.Millisecond)

	next, err := fed.RequestNextStep(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 100*time.Millisecond, next)

	next, err = fed.RequestNextStep(ctx, next)
	require.NoError(t, err)
	require.Equal(t, 200*time.Millisecond, next)
}

type fakeCore struct{}

func (fakeCore) Connected() bool                           { return true }
func (fakeCore) DataLink(from, to string) error             { return nil }
func (fakeCore) LogMessage(level, message string)           {}
func (fakeCore) Disconnect(ctx context.Context) error       { return nil }
func (fakeCore) ForceTerminate()                            {}
