package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"rigtycoon/internal/config"
	"rigtycoon/internal/game"
	"rigtycoon/internal/history"

	"github.com/gorilla/websocket"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, cfg config.APIConfig, rec *history.Recorder) *Server {
	t.Helper()
	opts := game.DefaultOptions(42)
	opts.Logger = quietLogger()
	g, err := game.New(opts)
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	if cfg.RatePerSec == 0 {
		cfg.RatePerSec, cfg.RateBurst = 1000, 1000
	}
	return New(cfg, quietLogger(), g, rec)
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	out := map[string]any{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rr.Body.String(), err)
	}
	return rr.Code, out
}

func TestTurnFlow(t *testing.T) {
	dir := t.TempDir()
	store, err := history.OpenSQLite(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	rec := &history.Recorder{Store: store}
	defer rec.Close()
	savePath := filepath.Join(dir, "game.json")
	s := newTestServer(t, config.APIConfig{SavePath: savePath}, rec)
	h := s.Handler()

	if code, _ := do(t, h, http.MethodGet, "/healthz", nil); code != http.StatusOK {
		t.Fatalf("healthz = %d", code)
	}
	if code, out := do(t, h, http.MethodPost, "/v1/turn/prepare", nil); code != http.StatusOK || out["month"] != float64(1) {
		t.Fatalf("prepare = %d %v", code, out)
	}
	if _, err := os.Stat(savePath); err != nil {
		t.Fatalf("autosave missing: %v", err)
	}

	_, sugg := do(t, h, http.MethodGet, "/v1/bids/suggest", nil)
	bids, _ := sugg["bids"].([]any)
	for _, b := range bids {
		m := b.(map[string]any)
		code, out := do(t, h, http.MethodPost, "/v1/bids", map[string]any{
			"tender_id": m["tender_id"], "rig_id": m["rig_id"], "dayrate_k": m["dayrate_k"],
		})
		if code != http.StatusOK || out["ok"] != true {
			t.Fatalf("place bid = %d %v", code, out)
		}
	}
	_, pending := do(t, h, http.MethodGet, "/v1/bids", nil)
	if got, _ := pending["bids"].([]any); len(got) != len(bids) {
		t.Fatalf("pending bids = %d, want %d", len(got), len(bids))
	}

	code, report := do(t, h, http.MethodPost, "/v1/turn/resolve", nil)
	if code != http.StatusOK || report["month"] != float64(1) {
		t.Fatalf("resolve = %d %v", code, report)
	}
	_, hist := do(t, h, http.MethodGet, "/v1/history?company="+game.PlayerCompanyID, nil)
	if rows, _ := hist["rows"].([]any); len(rows) != 1 {
		t.Fatalf("player history rows = %d, want 1", len(rows))
	}
	stored, err := store.Records(context.Background(), s.game.ID())
	if err != nil || len(stored) != 3 {
		t.Fatalf("stored rows = %d err %v", len(stored), err)
	}

	code, adv := do(t, h, http.MethodPost, "/v1/turn/advance", nil)
	if code != http.StatusOK {
		t.Fatalf("advance = %d %v", code, adv)
	}
	_, status := do(t, h, http.MethodGet, "/v1/status", nil)
	if status["month"] != float64(2) || status["phase"] != string(game.PhasePrepared) {
		t.Fatalf("status = %v", status)
	}

	loaded, err := game.Load(savePath, quietLogger())
	if err != nil {
		t.Fatalf("Load autosave: %v", err)
	}
	if loaded.Digest() != s.game.Digest() {
		t.Fatalf("autosave is stale")
	}
}

func TestDomainErrorStatuses(t *testing.T) {
	s := newTestServer(t, config.APIConfig{}, nil)
	h := s.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"resolve before prepare", http.MethodPost, "/v1/turn/resolve", nil, http.StatusConflict},
		{"bid before prepare", http.MethodPost, "/v1/bids", map[string]any{"tender_id": 1, "rig_id": 1, "dayrate_k": 100}, http.StatusConflict},
		{"unknown rig", http.MethodPost, "/v1/rigs/999/scrap", nil, http.StatusNotFound},
		{"bad rig id", http.MethodPost, "/v1/rigs/abc/scrap", nil, http.StatusBadRequest},
		{"illegal transition", http.MethodPost, "/v1/rigs/1/state", map[string]any{"state": "scrap"}, http.StatusBadRequest},
		{"unknown state", http.MethodPost, "/v1/rigs/1/state", map[string]any{"state": "mothballed"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/loans/take", map[string]any{"amount": 5}, http.StatusBadRequest},
		{"over credit limit", http.MethodPost, "/v1/loans/take", map[string]any{"amount_m": 1000}, http.StatusBadRequest},
		{"unknown listing", http.MethodPost, "/v1/market/5/buy", nil, http.StatusNotFound},
		{"unknown region", http.MethodPost, "/v1/rigs/1/mobilize", map[string]any{"region": "arctic"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		code, out := do(t, h, tc.method, tc.path, tc.body)
		if code != tc.want {
			t.Fatalf("%s: status %d want %d (%v)", tc.name, code, tc.want, out)
		}
		if _, ok := out["error"]; !ok {
			t.Fatalf("%s: no error message in %v", tc.name, out)
		}
	}

	code, out := do(t, h, http.MethodPost, "/v1/loans/take", map[string]any{"amount_m": 10})
	if code != http.StatusOK || out["debt_m"] != float64(10) {
		t.Fatalf("take loan = %d %v", code, out)
	}
}

func TestWriteDomainErrorBankrupt(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, fmt.Errorf("%w: month 4", game.ErrBankrupt))
	if rr.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rr.Code)
	}
	rr = httptest.NewRecorder()
	writeDomainError(rr, fmt.Errorf("disk on fire"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestMutationsAreRateLimited(t *testing.T) {
	s := newTestServer(t, config.APIConfig{RatePerSec: 0.001, RateBurst: 1}, nil)
	h := s.Handler()
	if code, _ := do(t, h, http.MethodPost, "/v1/turn/prepare", nil); code != http.StatusOK {
		t.Fatalf("first prepare = %d", code)
	}
	if code, _ := do(t, h, http.MethodPost, "/v1/turn/resolve", nil); code != http.StatusTooManyRequests {
		t.Fatalf("second mutation = %d, want 429", code)
	}
	if code, _ := do(t, h, http.MethodGet, "/v1/status", nil); code != http.StatusOK {
		t.Fatalf("reads should not be limited, got %d", code)
	}
}

func TestStreamPushesTurnEvents(t *testing.T) {
	s := newTestServer(t, config.APIConfig{}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/stream", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Hub().Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	for _, path := range []string{"/v1/turn/prepare", "/v1/turn/resolve"} {
		resp, err := http.Post(ts.URL+path, "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("POST %s = %d", path, resp.StatusCode)
		}
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var types []string
	for len(types) < 2 {
		var ev StreamEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		types = append(types, ev.Type)
	}
	if types[0] != "turn_prepared" || types[1] != "turn_resolved" {
		t.Fatalf("events = %v", types)
	}
}

func TestMarketReadsDuringAdvance(t *testing.T) {
	s := newTestServer(t, config.APIConfig{}, nil)
	h := s.Handler()
	if code, _ := do(t, h, http.MethodPost, "/v1/turn/prepare", nil); code != http.StatusOK {
		t.Fatalf("prepare = %d", code)
	}

	errs := make(chan error, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/turn/advance", nil))
			if rr.Code != http.StatusOK && rr.Code != http.StatusGone {
				errs <- fmt.Errorf("advance %d = %d %s", i, rr.Code, rr.Body.String())
				return
			}
		}
	}()
	for r := 0; r < 8; r++ {
		go func() {
			for i := 0; i < 25; i++ {
				rr := httptest.NewRecorder()
				h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/market", nil))
				var out struct {
					Oil game.Market `json:"oil"`
				}
				if rr.Code != http.StatusOK {
					errs <- fmt.Errorf("market = %d", rr.Code)
					return
				}
				if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil || len(out.Oil.History) == 0 {
					errs <- fmt.Errorf("market body %q: %v", rr.Body.String(), err)
					return
				}
			}
			errs <- nil
		}()
	}
	for r := 0; r < 8; r++ {
		if err := <-errs; err != nil {
			t.Fatal(err)
		}
	}
	<-done
	select {
	case err := <-errs:
		t.Fatal(err)
	default:
	}

	_, market := do(t, h, http.MethodGet, "/v1/market", nil)
	_, status := do(t, h, http.MethodGet, "/v1/status", nil)
	oil, _ := market["oil"].(map[string]any)
	if oil["price"] != status["oil_price"] {
		t.Fatalf("market oil %v != status oil %v", oil["price"], status["oil_price"])
	}
}
