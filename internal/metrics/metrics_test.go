package metrics

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsNoop(t *testing.T) {
	SetRecorder(nil)
	assert.NotPanics(t, func() { TimeRequest("get")(true) })
}

func TestPrometheusRecorder(t *testing.T) {
	p := NewPrometheusRecorder()
	SetRecorder(p)
	t.Cleanup(func() { SetRecorder(nil) })

	TimeRequest("get")(true)
	TimeRequest("get")(true)
	TimeRequest("post")(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.total.WithLabelValues("get", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.total.WithLabelValues("post", "false")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.seconds))

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "graphcommons_requests_total"))
}

func TestServe(t *testing.T) {
	t.Cleanup(func() { SetRecorder(nil) })

	t.Run("bound", func(t *testing.T) {
		p, err := Serve("127.0.0.1:0")
		require.NoError(t, err)
		assert.Same(t, p, Default())
	})

	t.Run("address in use", func(t *testing.T) {
		SetRecorder(nil)
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		p, err := Serve(ln.Addr().String())

		assert.Error(t, err)
		assert.Nil(t, p)
		assert.Equal(t, noopRecorder{}, Default())
	})
}
