package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Counter names in id_counters.
const (
	counterFlights     = "flights"
	counterFlightSeats = "flight_seats"
	counterOrders      = "orders"
	counterAircraft    = "aircraft"
	counterSeats       = "seats"
	counterRoutes      = "routes"
	counterPilots      = "pilots"
	counterAttendants  = "attendants"
)

// Identifier formatters matching the operational data.
func FormatFlightID(n int64) string     { return fmt.Sprintf("FT%03d", n) }
func FormatFlightSeatID(n int64) string { return fmt.Sprintf("FS%06d", n) }
func FormatOrderID(n int64) string      { return fmt.Sprintf("O%09d", n) }
func FormatSeatID(n int64) string       { return fmt.Sprintf("ST%05d", n) }
func FormatRouteID(n int64) string      { return fmt.Sprintf("RT%03d", n) }
func FormatPilotID(n int64) string      { return fmt.Sprintf("P%04d", n) }
func FormatAttendantID(n int64) string  { return fmt.Sprintf("A%04d", n) }

// FormatAircraftID derives an aircraft ID from the manufacturer's initial
// and an allocated number.
func FormatAircraftID(manufacturer string, n int64) string {
	prefix := "X"
	for _, r := range manufacturer {
		prefix = string(r)
		break
	}
	return fmt.Sprintf("%s%03d", prefix, n)
}

// fallbackMaxQueries derive the highest used number per entity from the
// numeric tail of existing identifiers, for environments where the
// id_counters table is missing.
var fallbackMaxQueries = map[string]string{
	counterFlights:     `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM flights`,
	counterFlightSeats: `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM flight_seats`,
	counterOrders:      `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM orders`,
	counterAircraft:    `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM aircraft`,
	counterSeats:       `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM seats`,
	counterRoutes:      `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM routes`,
	counterPilots:      `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM pilots`,
	counterAttendants:  `SELECT COALESCE(MAX(NULLIF(regexp_replace(id, '\D', '', 'g'), '')::bigint), 0) FROM attendants`,
}

// reserveBlock atomically reserves count sequential identifier numbers for
// the named entity and returns the first number of the block. The counter
// row is locked for the duration of the surrounding transaction, so the
// reservation commits or rolls back with the mutation it numbers.
//
// When the id_counters table does not exist (undefined_table, 42P01) the
// allocation falls back to scanning the current MAX. The fallback is not
// race-safe and is a degraded mode for legacy environments only. The
// counter read runs inside a savepoint so the missing-table error does
// not poison the surrounding transaction.
func (r *Repository) reserveBlock(ctx context.Context, tx pgx.Tx, name string, count int64) (int64, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to open savepoint: %w", err)
	}

	var next int64
	err = sp.QueryRow(ctx, `
		SELECT next_num FROM id_counters WHERE name = $1 FOR UPDATE
	`, name).Scan(&next)
	if err != nil {
		_ = sp.Rollback(ctx)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
			return r.reserveBlockFallback(ctx, tx, name)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			next = 1
			if _, err := tx.Exec(ctx, `
				INSERT INTO id_counters (name, next_num) VALUES ($1, $2)
			`, name, next+count); err != nil {
				return 0, fmt.Errorf("failed to seed id counter %s: %w", name, err)
			}
			return next, nil
		}
		return 0, fmt.Errorf("failed to read id counter %s: %w", name, err)
	}

	if err := sp.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to release savepoint: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE id_counters SET next_num = next_num + $1 WHERE name = $2
	`, count, name); err != nil {
		return 0, fmt.Errorf("failed to advance id counter %s: %w", name, err)
	}

	return next, nil
}

func (r *Repository) reserveBlockFallback(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	query, ok := fallbackMaxQueries[name]
	if !ok {
		return 0, fmt.Errorf("no fallback allocation for counter %s", name)
	}

	log.Warn().Str("counter", name).
		Msg("id_counters table missing, falling back to MAX scan (not race-safe)")

	var max int64
	if err := tx.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed fallback id scan for %s: %w", name, err)
	}
	return max + 1, nil
}
