package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dasje/cookie-clicker-simulator/internal/protocol"
	"github.com/dasje/cookie-clicker-simulator/internal/report"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/catalog"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/engine"
	"github.com/dasje/cookie-clicker-simulator/internal/sim/strategy"
)

// Server accepts RUN requests over a websocket and streams each run
// back as RUN_STARTED, POINT per history event, then RESULT. Requests
// on one connection are served in order.
type Server struct {
	catalog   *catalog.Catalog
	baseRate  float64
	maxPoints int
	log       *slog.Logger

	upgrader websocket.Upgrader

	runsStarted    atomic.Uint64
	runsFinished   atomic.Uint64
	runsFailed     atomic.Uint64
	rejects        atomic.Uint64
	pointsStreamed atomic.Uint64
}

// Metrics is a point-in-time snapshot of the server counters.
type Metrics struct {
	RunsStarted    uint64
	RunsFinished   uint64
	RunsFailed     uint64
	Rejects        uint64
	PointsStreamed uint64
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		RunsStarted:    s.runsStarted.Load(),
		RunsFinished:   s.runsFinished.Load(),
		RunsFailed:     s.runsFailed.Load(),
		Rejects:        s.rejects.Load(),
		PointsStreamed: s.pointsStreamed.Load(),
	}
}

func NewServer(cat *catalog.Catalog, baseRate float64, maxStreamPoints int, logger *slog.Logger) *Server {
	s := &Server{
		catalog:   cat,
		baseRate:  baseRate,
		maxPoints: maxStreamPoints,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, 64)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				s.reject(ctx, out, "", protocol.ErrBadRequest, "malformed JSON")
				continue
			}
			if base.Type != protocol.TypeRun {
				s.reject(ctx, out, "", protocol.ErrBadRequest, fmt.Sprintf("unexpected message type %q", base.Type))
				continue
			}
			var run protocol.RunMsg
			if err := json.Unmarshal(msg, &run); err != nil {
				s.reject(ctx, out, "", protocol.ErrBadRequest, "malformed RUN")
				continue
			}
			if run.ProtocolVersion != protocol.Version {
				s.reject(ctx, out, run.ID, protocol.ErrBadRequest, fmt.Sprintf("unsupported protocol_version %q", run.ProtocolVersion))
				continue
			}
			s.serveRun(ctx, out, run)
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// serveRun validates one request and streams the whole run. Send
// failures cancel ctx and surface on the next loop iteration.
func (s *Server) serveRun(ctx context.Context, out chan []byte, run protocol.RunMsg) {
	strat, err := strategy.ByName(run.Strategy)
	if err != nil {
		s.reject(ctx, out, run.ID, protocol.ErrUnknownStrategy, err.Error())
		return
	}
	baseRate := run.BaseRate
	if baseRate == 0 {
		baseRate = s.baseRate
	}

	runID := uuid.NewString()
	started := protocol.RunStartedMsg{
		Type:            protocol.TypeRunStarted,
		ProtocolVersion: protocol.Version,
		AckFor:          run.ID,
		RunID:           runID,
		Strategy:        run.Strategy,
		Horizon:         run.Horizon,
		BaseRate:        baseRate,
		CatalogDigest:   s.catalog.Digest(),
		Items:           s.catalog.Items(),
	}
	s.runsStarted.Add(1)
	if err := s.send(ctx, out, started); err != nil {
		return
	}
	s.log.Info("run started", "run_id", runID, "strategy", run.Strategy, "horizon", run.Horizon)

	seq := 0
	exceeded := false
	observer := func(ev engine.Event) {
		if exceeded {
			return
		}
		if seq >= s.maxPoints {
			exceeded = true
			return
		}
		point := protocol.PointMsg{
			Type:  protocol.TypePoint,
			RunID: runID,
			Seq:   seq,
			Time:  ev.Time,
			Item:  ev.Item,
			Cost:  ev.Cost,
			Total: ev.Total,
		}
		seq++
		if s.send(ctx, out, point) == nil {
			s.pointsStreamed.Add(1)
		}
	}

	st, err := engine.SimulateWithOptions(s.catalog, run.Horizon, strat, engine.Options{
		BaseRate: baseRate,
		Observer: observer,
	})
	if err != nil {
		code := protocol.ErrInternal
		switch {
		case errors.Is(err, catalog.ErrUnknownItem):
			code = protocol.ErrUnknownItem
		case errors.Is(err, engine.ErrNonPositiveRate):
			code = protocol.ErrInvalidRate
		}
		s.runsFailed.Add(1)
		s.log.Warn("run failed", "run_id", runID, "code", code, "err", err)
		s.abort(ctx, out, runID, code, err.Error())
		return
	}
	if exceeded {
		s.runsFailed.Add(1)
		s.log.Warn("run aborted", "run_id", runID, "code", protocol.ErrRunTooLong, "max_points", s.maxPoints)
		s.abort(ctx, out, runID, protocol.ErrRunTooLong, fmt.Sprintf("history exceeds %d points", s.maxPoints))
		return
	}

	history := st.History()
	counts := report.PurchaseCounts(history)
	purchases := make([]protocol.ItemCount, 0, len(counts))
	for _, c := range counts {
		purchases = append(purchases, protocol.ItemCount{Item: c.Item, Count: c.Count})
	}
	result := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		RunID:           runID,
		Strategy:        run.Strategy,
		Elapsed:         st.ElapsedTime(),
		Balance:         st.Balance(),
		Total:           st.LifetimeTotal(),
		Rate:            st.Rate(),
		Events:          len(history),
		Purchases:       purchases,
	}
	s.runsFinished.Add(1)
	if err := s.send(ctx, out, result); err != nil {
		return
	}
	s.log.Info("run finished", "run_id", runID, "events", len(history), "total", st.LifetimeTotal())
}

func (s *Server) reject(ctx context.Context, out chan []byte, ackFor, code, message string) {
	s.rejects.Add(1)
	_ = s.send(ctx, out, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		AckFor:          ackFor,
		Code:            code,
		Message:         message,
	})
}

func (s *Server) abort(ctx context.Context, out chan []byte, runID, code, message string) {
	_ = s.send(ctx, out, protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		RunID:           runID,
		Code:            code,
		Message:         message,
	})
}

func (s *Server) send(ctx context.Context, out chan []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- b:
		return nil
	}
}
