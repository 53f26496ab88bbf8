package savefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSave = `{
  "save_version": 1,
  "meta": {"created_at": "2025-01-01T00:00:00Z", "game_version": "1.2.0", "game_id": "g-1"},
  "rng_state": {"algorithm": "pcg", "words": [18446744073709551615, 7], "draws": 12},
  "time": {"month": 0, "start_date": "2025-01-01"},
  "phase": "new",
  "markets": {
    "oil": {"params": {"name": "oil", "mean_price": 70, "floor": 25, "cap": 140}, "price": 70, "history": [70], "multiplier": 0.8},
    "steel": {"params": {"name": "steel", "mean_price": 800, "floor": 400, "cap": 1400}, "price": 800, "history": [800], "multiplier": 1}
  },
  "rigs": [{"id": 1, "rig_type": "jackup", "build_year": 2017, "condition": 78, "region": "north_sea", "state": "active"}],
  "companies": [{"id": "player", "name": "PlayerCo", "is_player": true, "cash_m": 55, "debt_m": 0, "reputation": 0.55, "rig_ids": [1]}],
  "contract_id_seq": 1,
  "rig_id_seq": 1000,
  "current_rigs_for_sale": [],
  "open_tenders": [],
  "pending_bids": [],
  "contract_gen": {"config": {}},
  "rig_market_gen": {"config": {}},
  "loan_terms": {"monthly_rate": 0.008, "credit_limit_m": 60},
  "history": []
}`

func TestValidateAcceptsMinimalSave(t *testing.T) {
	if err := Validate([]byte(minimalSave)); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr error
	}{
		{
			name:    "future version",
			mutate:  func(s string) string { return strings.Replace(s, `"save_version": 1`, `"save_version": 2`, 1) },
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "missing version",
			mutate:  func(s string) string { return strings.Replace(s, `"save_version": 1,`, ``, 1) },
			wantErr: ErrSchema,
		},
		{
			name:    "unknown rig state",
			mutate:  func(s string) string { return strings.Replace(s, `"state": "active"`, `"state": "mothballed"`, 1) },
			wantErr: ErrSchema,
		},
		{
			name:    "rig missing condition",
			mutate:  func(s string) string { return strings.Replace(s, `"condition": 78, `, ``, 1) },
			wantErr: ErrSchema,
		},
		{
			name:    "company missing cash",
			mutate:  func(s string) string { return strings.Replace(s, `"cash_m": 55, `, ``, 1) },
			wantErr: ErrSchema,
		},
		{
			name:    "bad rng algorithm",
			mutate:  func(s string) string { return strings.Replace(s, `"pcg"`, `"mt19937"`, 1) },
			wantErr: ErrSchema,
		},
		{
			name:    "not json",
			mutate:  func(string) string { return "{" },
			wantErr: ErrSchema,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate([]byte(tc.mutate(minimalSave)))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"game.json", "game.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			if err := Write(path, []byte(minimalSave)); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Read(path)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !bytes.Equal(got, []byte(minimalSave)) {
				t.Fatalf("round trip changed bytes")
			}
		})
	}

	onDisk, err := os.ReadFile(filepath.Join(dir, "nested", "game.json.zst"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if bytes.HasPrefix(onDisk, []byte("{")) {
		t.Fatalf("expected compressed bytes on disk")
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "save.json")
	for i := 0; i < 3; i++ {
		if err := Write(path, []byte(minimalSave)); err != nil {
			t.Fatalf("Write #%d: %v", i, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "save.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only save.json, got %v", names)
	}
}

func TestReadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"save_version": 1}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Read(path); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}
