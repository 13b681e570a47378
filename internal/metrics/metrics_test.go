package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := New("test", reg)
	require.NoError(t, err)

	o.RecordUpload(time.Millisecond, 10, nil)
	o.RecordUpload(time.Millisecond, 99, errors.New("boom"))
	o.RecordStream(206, 4, "complete")
	o.RecordStream(416, 0, "rejected")

	assert.Equal(t, 10.0, testutil.ToFloat64(o.uploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.uploadErrors))
	assert.Equal(t, 4.0, testutil.ToFloat64(o.streamBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.streams.WithLabelValues("206", "complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.streams.WithLabelValues("416", "rejected")))
}

func TestNilObserverIsNoop(t *testing.T) {
	var o *Observer
	o.RecordUpload(time.Second, 1, nil)
	o.RecordStream(200, 1, "complete")
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New("dup", reg)
	require.NoError(t, err)
	_, err = New("dup", reg)
	assert.Error(t, err)
}
