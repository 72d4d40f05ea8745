// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package stats

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/ecn-test/ecn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStats returns stats with one capable path and one bleached path.
func newTestStats(t *testing.T) *ecn.Stats {
	t.Helper()

	stats := ecn.NewStats()
	acked := []ecn.Packet{{Number: 11, Type: ecn.PacketTypeShort, ECT0: true}}

	capable, err := ecn.NewInfo()
	require.NoError(t, err)
	capable.OnPacketSent(ecn.TestCount, stats)
	counts := ecn.NewCount(0, 10, 0, 1)
	capable.OnPacketsAcked(acked, &counts, stats)
	require.Equal(t, ecn.Capable{}, capable.State())

	bleached, err := ecn.NewInfo()
	require.NoError(t, err)
	bleached.OnPacketSent(ecn.TestCount, stats)
	bleached.OnPacketsAcked(acked, nil, stats)
	require.Equal(t, ecn.Failed{Err: ecn.Bleaching}, bleached.State())

	return stats
}

func TestCollector(t *testing.T) {
	c := NewCollector(newTestStats(t))

	expected := `
# HELP ecn_paths_capable Number of paths currently validated as ECN capable.
# TYPE ecn_paths_capable gauge
ecn_paths_capable 1
# HELP ecn_path_validation_failures_total Number of paths that failed ECN validation.
# TYPE ecn_path_validation_failures_total counter
ecn_path_validation_failures_total{reason="black-hole"} 0
ecn_path_validation_failures_total{reason="bleaching"} 1
ecn_path_validation_failures_total{reason="received-unsent-ect1"} 0
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"ecn_paths_capable", "ecn_path_validation_failures_total")
	require.NoError(t, err)

	assert.Equal(t, len(ecn.PacketTypes)*len(ackedCodepoints), testutil.CollectAndCount(c, "ecn_tx_acked"))
}

func TestServerPublish(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	s.Publish(newTestStats(t).Snapshot(), 42)

	points := map[string]float64{}
	for len(s.dataChan) > 0 {
		d := <-s.dataChan
		assert.Equal(t, int64(42), d.Timestamp)
		points[d.Label] = d.Value
	}

	assert.Len(t, points, 4+len(ecn.PacketTypes)*len(ackedCodepoints))
	assert.Equal(t, 1.0, points["capable"])
	assert.Equal(t, 1.0, points["failed/bleaching"])
	assert.Equal(t, 0.0, points["failed/black-hole"])
	assert.Equal(t, 10.0, points["tx-acked/short/ECT(0)"])
	assert.Equal(t, 1.0, points["tx-acked/short/CE"])
}

func TestServerAddDropsWhenFull(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	for i := 0; i < dataChanSize+10; i++ {
		s.Add(DataPoint{Label: "x"})
	}
	assert.Len(t, s.dataChan, dataChanSize)
}

func TestServerHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(newTestStats(t))))

	s, err := New(Gatherer(reg))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	t.Run("home", func(t *testing.T) {
		body := get(t, srv.URL+"/")
		assert.Contains(t, body, strings.TrimPrefix(srv.URL, "http://"))
		assert.Contains(t, body, "update")
	})

	t.Run("metrics", func(t *testing.T) {
		body := get(t, srv.URL+"/metrics")
		assert.Contains(t, body, "ecn_paths_capable 1")
	})

	t.Run("update", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/update", nil)
		require.NoError(t, err)
		defer func() {
			_ = resp.Body.Close()
			_ = conn.Close()
		}()

		s.Add(DataPoint{Label: "capable", Timestamp: 7, Value: 1})

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var d DataPoint
		require.NoError(t, conn.ReadJSON(&d))
		assert.Equal(t, DataPoint{Label: "capable", Timestamp: 7, Value: 1}, d)
	})
}

func get(t *testing.T, url string) string {
	t.Helper()

	resp, err := http.Get(url) //nolint:gosec,noctx
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}
