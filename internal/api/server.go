package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"rigtycoon/internal/config"
	"rigtycoon/internal/game"
	"rigtycoon/internal/history"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Server hosts a single game session. The game is not safe for concurrent
// use, so every handler goes through mu.
type Server struct {
	cfg     config.APIConfig
	log     *slog.Logger
	rec     *history.Recorder
	hub     *Hub
	limiter *rate.Limiter
	mux     *chi.Mux

	mu   sync.Mutex
	game *game.Game
}

func New(cfg config.APIConfig, logger *slog.Logger, g *game.Game, rec *history.Recorder) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.RateBurst < 1 {
		cfg.RateBurst = 10
	}
	s := &Server{
		cfg:     cfg,
		log:     logger,
		rec:     rec,
		hub:     NewHub(logger),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst),
		mux:     chi.NewRouter(),
		game:    g,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stream", s.hub.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/status", s.handleStatus)
			r.Get("/fleet", s.handleFleet)
			r.Get("/tenders", s.handleTenders)
			r.Get("/market", s.handleMarket)
			r.Get("/finances", s.handleFinances)
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/history", s.handleHistory)
			r.Get("/bids", s.handleBids)
			r.Get("/bids/suggest", s.handleSuggest)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Use(s.rateLimit)
			r.Post("/turn/prepare", s.handlePrepare)
			r.Post("/turn/resolve", s.handleResolve)
			r.Post("/turn/advance", s.handleAdvance)
			r.Post("/bids", s.handlePlaceBid)
			r.Delete("/bids/{tender_id}", s.handleWithdrawBid)
			r.Post("/rigs/{id}/state", s.handleRigState)
			r.Post("/rigs/{id}/mobilize", s.handleMobilize)
			r.Post("/rigs/{id}/scrap", s.handleScrap)
			r.Post("/market/{id}/buy", s.handleBuy)
			r.Post("/loans/take", s.handleLoan(true))
			r.Post("/loans/repay", s.handleLoan(false))
			r.Post("/save", s.handleSave)
		})
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) read(w http.ResponseWriter, fn func(g *game.Game) any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, fn(s.game))
}

// mutate runs fn under the session lock and autosaves when it succeeds.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, g *game.Game) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := fn(r.Context(), s.game)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.persistLocked(); err != nil {
		s.log.Error("autosave failed", "path", s.cfg.SavePath, "err", err)
		writeError(w, http.StatusInternalServerError, "autosave failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) persistLocked() error {
	if s.cfg.SavePath == "" {
		return nil
	}
	return s.game.Save(s.cfg.SavePath)
}

func (s *Server) afterResolveLocked(ctx context.Context, report game.TurnReport) {
	if s.rec != nil {
		if err := s.rec.Record(ctx, s.game, report); err != nil {
			s.log.Error("record history failed", "month", report.Month, "err", err)
		}
	}
	s.hub.Broadcast("turn_resolved", report)
	if report.Bankrupt {
		s.hub.Broadcast("bankrupt", s.game.Status())
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any { return g.Status() })
}

func (s *Server) handleFleet(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any { return map[string]any{"rigs": g.Fleet()} })
}

func (s *Server) handleTenders(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any { return map[string]any{"tenders": g.TenderViews()} })
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any {
		mv := g.MarketView()
		return map[string]any{
			"oil":      mv.Oil,
			"steel":    mv.Steel,
			"listings": g.ResaleMarket(),
		}
	})
}

func (s *Server) handleFinances(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any { return g.Finances() })
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any { return map[string]any{"companies": g.Leaderboard()} })
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	s.read(w, func(g *game.Game) any {
		rows := make([]game.HistoryRecord, 0, len(g.History()))
		for _, h := range g.History() {
			if company == "" || h.CompanyID == company {
				rows = append(rows, h)
			}
		}
		return map[string]any{"rows": rows}
	})
}

func (s *Server) handleBids(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any { return map[string]any{"bids": g.PendingBids()} })
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	s.read(w, func(g *game.Game) any { return map[string]any{"bids": g.SuggestBids()} })
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		tenders, err := g.PrepareTurn()
		if err != nil {
			return nil, err
		}
		s.hub.Broadcast("turn_prepared", g.Status())
		return map[string]any{"month": g.Month(), "tenders": tenders}, nil
	})
}

type bidInput struct {
	TenderID int `json:"tender_id"`
	RigID    int `json:"rig_id"`
	DayrateK int `json:"dayrate_k"`
}

func (b bidInput) bid() game.Bid {
	return game.Bid{TenderID: b.TenderID, CompanyID: game.PlayerCompanyID, RigID: b.RigID, DayrateK: b.DayrateK}
}

type resolveInput struct {
	Bids []bidInput `json:"bids"`
}

func (in resolveInput) bids() []game.Bid {
	out := make([]game.Bid, 0, len(in.Bids))
	for _, b := range in.Bids {
		out = append(out, b.bid())
	}
	return out
}

func decodeOptionalJSON(r *http.Request, out any) error {
	if r.ContentLength == 0 {
		return nil
	}
	return decodeJSON(r, out)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var in resolveInput
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutate(w, r, func(ctx context.Context, g *game.Game) (any, error) {
		report, err := g.ResolveTurn(in.bids()...)
		if err != nil {
			return nil, err
		}
		s.afterResolveLocked(ctx, report)
		return report, nil
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var in resolveInput
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutate(w, r, func(ctx context.Context, g *game.Game) (any, error) {
		report, tenders, err := g.Advance(in.bids()...)
		if err != nil {
			return nil, err
		}
		if report.Month > 0 {
			s.afterResolveLocked(ctx, report)
		}
		return map[string]any{"report": report, "tenders": tenders}, nil
	})
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var in bidInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		if err := g.PlaceBid(in.TenderID, in.RigID, in.DayrateK); err != nil {
			return nil, err
		}
		return game.ResultOf(nil, "bid placed"), nil
	})
}

func (s *Server) handleWithdrawBid(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := intParam(w, r, "tender_id")
	if !ok {
		return
	}
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		if err := g.WithdrawBid(tenderID); err != nil {
			return nil, err
		}
		return game.ResultOf(nil, "bid withdrawn"), nil
	})
}

func (s *Server) handleRigState(w http.ResponseWriter, r *http.Request) {
	rigID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		State string `json:"state"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := game.ParseRigState(in.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		cost, err := g.SetRigState(rigID, to)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ok": true, "cost_m": cost}, nil
	})
}

func (s *Server) handleMobilize(w http.ResponseWriter, r *http.Request) {
	rigID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Region string `json:"region"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	region, err := game.ParseRegion(in.Region)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		cost, err := g.Mobilize(rigID, region)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ok": true, "cost_m": cost}, nil
	})
}

func (s *Server) handleScrap(w http.ResponseWriter, r *http.Request) {
	rigID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		payout, err := g.Scrap(rigID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ok": true, "payout_m": payout}, nil
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	rigID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		rig, err := g.BuyRig(rigID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"ok": true, "rig": rig}, nil
	})
}

func (s *Server) handleLoan(take bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			AmountM float64 `json:"amount_m"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
			var err error
			if take {
				err = g.TakeLoan(in.AmountM)
			} else {
				err = g.RepayLoan(in.AmountM)
			}
			if err != nil {
				return nil, err
			}
			return g.Finances(), nil
		})
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Path string `json:"path"`
	}
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutate(w, r, func(_ context.Context, g *game.Game) (any, error) {
		if in.Path != "" {
			if err := g.Save(in.Path); err != nil {
				return nil, err
			}
		}
		return map[string]any{"ok": true, "digest": g.Digest()}, nil
	})
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrWrongPhase):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrBankrupt):
		writeError(w, http.StatusGone, err.Error())
	case game.IsRejection(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
