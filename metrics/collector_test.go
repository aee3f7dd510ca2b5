package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/ags10/air"
)

var _ GasSensor = &air.AGS10{}
var _ GasSensor = &air.MockGasSensor{}

func TestCollector_Poll(t *testing.T) {
	versionCalls := 0
	sensor := air.NewMockGasSensor(
		func(ctx context.Context) (uint32, error) { return 750, nil },
		air.WithResistanceBehavior(func(ctx context.Context) (uint32, error) { return 1_250_000, nil }),
		air.WithVersionBehavior(func(ctx context.Context) (uint32, error) { versionCalls++; return 11, nil }),
	)
	c := NewCollector(sensor)
	ctx := context.Background()

	c.Poll(ctx)
	c.Poll(ctx)

	assert.Equal(t, float64(750), testutil.ToFloat64(c.tvoc))
	assert.Equal(t, float64(1_250_000), testutil.ToFloat64(c.resistance))
	assert.Equal(t, float64(11), testutil.ToFloat64(c.version))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.ready))
	assert.Equal(t, 1, versionCalls, "version is read once")
	assert.Equal(t, 0, testutil.CollectAndCount(c.errors))
}

func TestCollector_PollErrors(t *testing.T) {
	fail := true
	sensor := air.NewMockGasSensor(
		func(ctx context.Context) (uint32, error) {
			if fail {
				return 0, errors.New("crc mismatch")
			}
			return 300, nil
		},
		air.WithResistanceBehavior(func(ctx context.Context) (uint32, error) { return 0, errors.New("nack") }),
		air.WithVersionBehavior(func(ctx context.Context) (uint32, error) { return 0, errors.New("nack") }),
	)
	c := NewCollector(sensor)
	ctx := context.Background()

	c.Poll(ctx)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.errors.WithLabelValues(readingTVOC)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.errors.WithLabelValues(readingResistance)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.errors.WithLabelValues(readingVersion)))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.tvoc), "failed read must not set the gauge")

	fail = false
	c.Poll(ctx)
	assert.Equal(t, float64(300), testutil.ToFloat64(c.tvoc))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.errors.WithLabelValues(readingTVOC)))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.errors.WithLabelValues(readingVersion)))
}

type preheatSensor struct {
	*air.MockGasSensor
}

func (preheatSensor) Measure(ctx context.Context) (air.Reading, error) {
	return air.Reading{Status: air.Status(0x01), TVOC: 0}, nil
}

func TestCollector_PreheatSkipsTVOC(t *testing.T) {
	sensor := preheatSensor{air.NewMockGasSensor(func(ctx context.Context) (uint32, error) { return 0, nil })}
	c := NewCollector(sensor)
	c.tvoc.Set(42)

	c.Poll(context.Background())
	assert.Equal(t, float64(0), testutil.ToFloat64(c.ready))
	assert.Equal(t, float64(42), testutil.ToFloat64(c.tvoc))
}

func TestCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	sensor := air.NewMockGasSensor(func(ctx context.Context) (uint32, error) { return 640, nil })
	c := NewCollector(sensor, WithRegistry(reg), WithNamespace("office"), WithLabels(prometheus.Labels{"address": "0x1a"}))
	c.Poll(context.Background())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `office_tvoc_ppb{address="0x1a"} 640`)

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP office_firmware_version Sensor firmware version
# TYPE office_firmware_version gauge
office_firmware_version{address="0x1a"} 0
`), "office_firmware_version")
	assert.NoError(t, err)
}

func TestCollector_RunStopsOnCancel(t *testing.T) {
	polls := 0
	sensor := air.NewMockGasSensor(func(ctx context.Context) (uint32, error) { polls++; return 1, nil })
	c := NewCollector(sensor)

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()
	err := c.Run(ctx, 10*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, polls, 2)
}
