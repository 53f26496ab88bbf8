package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"rigtycoon/internal/db"
	"rigtycoon/internal/game"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects and creates the history table if it is missing.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init postgres history: %w", describe(err))
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresSchema = `CREATE TABLE IF NOT EXISTS rig_company_months (
	run_id text NOT NULL,
	month integer NOT NULL,
	company_id text NOT NULL,
	company text NOT NULL,
	date text NOT NULL,
	oil_price double precision NOT NULL,
	steel_price double precision NOT NULL,
	demand jsonb NOT NULL,
	cash_m double precision NOT NULL,
	debt_m double precision NOT NULL,
	rigs integer NOT NULL,
	rigs_active integer NOT NULL,
	rigs_warm integer NOT NULL,
	rigs_cold integer NOT NULL,
	rigs_contracted integer NOT NULL,
	rigs_in_transit integer NOT NULL,
	recorded_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, month, company_id)
)`

func (s *PostgresStore) Append(ctx context.Context, runID string, recs []game.HistoryRecord) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, r := range recs {
		demand, err := encodeDemand(r.Demand)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO rig_company_months
				(run_id, month, company_id, company, date, oil_price, steel_price, demand,
				 cash_m, debt_m, rigs, rigs_active, rigs_warm, rigs_cold, rigs_contracted, rigs_in_transit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (run_id, month, company_id) DO UPDATE SET
				company = excluded.company,
				date = excluded.date,
				oil_price = excluded.oil_price,
				steel_price = excluded.steel_price,
				demand = excluded.demand,
				cash_m = excluded.cash_m,
				debt_m = excluded.debt_m,
				rigs = excluded.rigs,
				rigs_active = excluded.rigs_active,
				rigs_warm = excluded.rigs_warm,
				rigs_cold = excluded.rigs_cold,
				rigs_contracted = excluded.rigs_contracted,
				rigs_in_transit = excluded.rigs_in_transit,
				recorded_at = now()
		`, runID, r.Month, r.CompanyID, r.Company, r.Date, r.OilPrice, r.SteelPrice, demand,
			r.CashM, r.DebtM, r.Rigs, r.RigsActive, r.RigsWarm, r.RigsCold, r.RigsContracted, r.RigsInTransit)
		if err != nil {
			return fmt.Errorf("insert month %d %s: %w", r.Month, r.CompanyID, describe(err))
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Records(ctx context.Context, runID string) ([]game.HistoryRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT month, company_id, company, date, oil_price, steel_price, demand::text,
		       cash_m, debt_m, rigs, rigs_active, rigs_warm, rigs_cold, rigs_contracted, rigs_in_transit
		FROM rig_company_months
		WHERE run_id = $1
		ORDER BY month, CASE WHEN company_id = $2 THEN 0 ELSE 1 END, company_id
	`, runID, game.PlayerCompanyID)
	if err != nil {
		return nil, describe(err)
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

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w (sqlstate %s)", err, pgErr.Code)
	}
	return err
}
