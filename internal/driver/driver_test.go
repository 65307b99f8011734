package driver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/norceresearch/helics-fmi/internal/bus"
)

func TestSecondsToDuration(t *testing.T) {
	require.Equal(t, 200*time.Millisecond, secondsToDuration(0.2))
	require.Equal(t, 30*time.Second, secondsToDuration(30))
}

type fakePublication struct {
	name      string
	published []float64
}

func (p *fakePublication) Name() string { return p.name }
func (p *fakePublication) Publish(value float64) error {
	p.published = append(p.published, value)
	return nil
}

func TestWriteCaptureHeaderAndRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	d := &Driver{
		name:        "bouncer",
		captureFile: f,
		outputs: []bus.Publication{
			&fakePublication{name: "h"},
			&fakePublication{name: "v"},
		},
	}

	require.NoError(t, d.writeCaptureHeader())
	require.NoError(t, d.writeCaptureRow(0.2, []float64{1.5, -2.25}))

	require.NoError(t, f.Sync())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "time,h,v\n0.2,1.5,-2.25\n", string(data))
}

func TestNameAndInstanceAccessors(t *testing.T) {
	d := &Driver{name: "bouncer"}
	require.Equal(t, "bouncer", d.Name())
	require.Nil(t, d.Instance())
}
