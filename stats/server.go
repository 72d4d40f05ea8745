// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package stats exposes ECN validation statistics over a websocket plot page
// and a Prometheus endpoint.
package stats

import (
	"html/template"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pion/ecn-test/ecn"
	"github.com/pion/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const dataChanSize = 1024

// DataPoint represents a single data point for visualization.
type DataPoint struct {
	Label     string
	Timestamp int64 // milliseconds after Start
	Value     float64
}

// Option configures a Server.
type Option func(*Server) error

// LoggerFactory sets the logger factory of the server.
func LoggerFactory(f logging.LoggerFactory) Option {
	return func(s *Server) error {
		s.log = f.NewLogger("stats_server")

		return nil
	}
}

// Gatherer serves the metrics of g on /metrics.
func Gatherer(g prometheus.Gatherer) Option {
	return func(s *Server) error {
		s.gatherer = g

		return nil
	}
}

// Server handles WebSocket connections for real-time data visualization.
type Server struct {
	upgrader *websocket.Upgrader
	dataChan chan DataPoint
	gatherer prometheus.Gatherer
	log      logging.LeveledLogger
}

// New creates a new statistics server.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		upgrader: &websocket.Upgrader{},
		dataChan: make(chan DataPoint, dataChanSize),
		log:      logging.NewDefaultLoggerFactory().NewLogger("stats_server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Add queues a data point for broadcasting to clients. Data points are
// dropped while the queue is full.
func (s *Server) Add(d DataPoint) {
	select {
	case s.dataChan <- d:
	default:
		s.log.Tracef("dropping data point %v", d.Label)
	}
}

// Publish queues one data point per counter of the snapshot.
func (s *Server) Publish(snap ecn.StatsSnapshot, timestamp int64) {
	for _, o := range ecn.ValidationOutcomes() {
		label := "capable"
		if err, ok := o.Err(); ok {
			label = "failed/" + err.String()
		}
		s.Add(DataPoint{Label: label, Timestamp: timestamp, Value: float64(snap.PathValidation[o])})
	}
	for _, pt := range ecn.PacketTypes {
		count := snap.TxAcked[pt]
		for _, cp := range ackedCodepoints {
			s.Add(DataPoint{
				Label:     "tx-acked/" + pt.String() + "/" + cp.String(),
				Timestamp: timestamp,
				Value:     float64(count.Get(cp)),
			})
		}
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.home)
	mux.HandleFunc("/update", s.update)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// Start starts the statistics server on the specified address.
func (s *Server) Start(addr string) error {
	//nolint:gosec
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("s.upgrader.Upgrade: %v", err)

		return
	}
	defer func() {
		if err = wsConn.Close(); err != nil {
			s.log.Errorf("failed to close websocket connection: %v", err)
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case dataPoint := <-s.dataChan:
			if err = wsConn.WriteJSON(dataPoint); err != nil {
				s.log.Errorf("c.WriteJSON: %v", err)

				return
			}
		}
	}
}

var homeTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ECN path validation</title>
    <script src="https://cdn.plot.ly/plotly-latest.min.js"></script>
  </head>
  <body>
    <div id="graph"></div>
    <script>
      var traces = {};
      Plotly.newPlot('graph', []);

      const socket = new WebSocket("{{.}}");
      socket.onmessage = function(event) {
        var data = JSON.parse(event.data);
        if (!(data['Label'] in traces)) {
          traces[data['Label']] = Object.keys(traces).length;
          Plotly.addTraces('graph', {x: [], y: [], name: data['Label'], mode: 'lines', type: 'scatter'});
        }
        Plotly.extendTraces('graph', {
          y: [[data['Value']]],
          x: [[data['Timestamp']]]
        }, [traces[data['Label']]]);
      }
    </script>
  </body>
</html>
`))

func (s *Server) home(respWriter http.ResponseWriter, req *http.Request) {
	if err := homeTemplate.Execute(respWriter, "ws://"+req.Host+"/update"); err != nil {
		s.log.Errorf("failed to execute template: %v", err)
		http.Error(respWriter, "Internal server error", http.StatusInternalServerError)
	}
}
