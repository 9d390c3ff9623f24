package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	require.NoError(t, Register(RelayCollectors...))
	require.NoError(t, Register(RelayCollectors...))
	assert.Error(t, Register("nope"))
}

func TestIncCounterVec(t *testing.T) {
	vec := collectors[ONION_COUNT].(*prometheus.CounterVec)
	before := testutil.ToFloat64(vec.WithLabelValues("forwarded"))
	Inc(ONION_COUNT, "forwarded")
	assert.Equal(t, before+1, testutil.ToFloat64(vec.WithLabelValues("forwarded")))
}

func TestIncCounter(t *testing.T) {
	counter := collectors[MESSAGES_SENT].(prometheus.Counter)
	before := testutil.ToFloat64(counter)
	Inc(MESSAGES_SENT)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestObserveUnknownDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Observe("missing", 1)
		Inc("missing")
		Set("missing", 1)
	})
}
