package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"rigtycoon/internal/game"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		sqliteSchema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite history: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS company_months (
	run_id TEXT NOT NULL,
	month INTEGER NOT NULL,
	company_id TEXT NOT NULL,
	company TEXT NOT NULL,
	date TEXT NOT NULL,
	oil_price REAL NOT NULL,
	steel_price REAL NOT NULL,
	demand_json TEXT NOT NULL,
	cash_m REAL NOT NULL,
	debt_m REAL NOT NULL,
	rigs INTEGER NOT NULL,
	rigs_active INTEGER NOT NULL,
	rigs_warm INTEGER NOT NULL,
	rigs_cold INTEGER NOT NULL,
	rigs_contracted INTEGER NOT NULL,
	rigs_in_transit INTEGER NOT NULL,
	PRIMARY KEY (run_id, month, company_id)
);`

func (s *SQLiteStore) Append(ctx context.Context, runID string, recs []game.HistoryRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO company_months
		(run_id, month, company_id, company, date, oil_price, steel_price, demand_json,
		 cash_m, debt_m, rigs, rigs_active, rigs_warm, rigs_cold, rigs_contracted, rigs_in_transit)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		demand, err := encodeDemand(r.Demand)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, r.Month, r.CompanyID, r.Company, r.Date, r.OilPrice, r.SteelPrice, demand,
			r.CashM, r.DebtM, r.Rigs, r.RigsActive, r.RigsWarm, r.RigsCold, r.RigsContracted, r.RigsInTransit); err != nil {
			return fmt.Errorf("insert month %d %s: %w", r.Month, r.CompanyID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Records(ctx context.Context, runID string) ([]game.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT month, company_id, company, date, oil_price, steel_price, demand_json,
		cash_m, debt_m, rigs, rigs_active, rigs_warm, rigs_cold, rigs_contracted, rigs_in_transit
		FROM company_months WHERE run_id = ? ORDER BY month, rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.HistoryRecord
	for rows.Next() {
		var (
			r      game.HistoryRecord
			demand string
		)
		if err := rows.Scan(&r.Month, &r.CompanyID, &r.Company, &r.Date, &r.OilPrice, &r.SteelPrice, &demand,
			&r.CashM, &r.DebtM, &r.Rigs, &r.RigsActive, &r.RigsWarm, &r.RigsCold, &r.RigsContracted, &r.RigsInTransit); err != nil {
			return nil, err
		}
		if r.Demand, err = decodeDemand(demand); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
