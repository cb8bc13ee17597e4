package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/matan25/flytau/internal/status"
)

// CreateOrder books the given flight seats for a customer in a single
// transaction. Each seat sale is a compare-and-set: the update only
// succeeds while the seat is still Available, and a zero-row result means
// a concurrent booking won the seat, aborting the whole order.
func (r *Repository) CreateOrder(ctx context.Context, customerEmail, flightID string, flightSeatIDs []string) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	num, err := r.reserveBlock(ctx, tx, counterOrders, 1)
	if err != nil {
		return nil, err
	}
	orderID := FormatOrderID(num)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, customer_email, flight_id, status)
		VALUES ($1, $2, $3, 'Active')
	`, orderID, customerEmail, flightID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, seatID := range flightSeatIDs {
		tag, err := tx.Exec(ctx, `
			UPDATE flight_seats SET status = 'Sold'
			WHERE id = $1 AND flight_id = $2 AND status = 'Available'
		`, seatID, flightID)
		if err != nil {
			return nil, fmt.Errorf("failed to sell seat %s: %w", seatID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrSeatTaken
		}

		var price float64
		if err := tx.QueryRow(ctx, `
			SELECT price FROM flight_seats WHERE id = $1
		`, seatID).Scan(&price); err != nil {
			return nil, fmt.Errorf("failed to read seat price: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO tickets (order_id, flight_seat_id, paid_price)
			VALUES ($1, $2, $3)
		`, orderID, seatID, price); err != nil {
			return nil, fmt.Errorf("failed to insert ticket: %w", err)
		}
	}

	if err := updateFlightOccupancyTx(ctx, tx, flightID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return r.GetOrder(ctx, orderID)
}

// GetOrder returns an order with its tickets and seat labels.
func (r *Repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_email, flight_id, status, created_at, cancelled_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.CustomerEmail, &o.FlightID, &o.Status, &o.CreatedAt, &o.CancelledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT t.order_id, t.flight_seat_id, t.paid_price,
		       s.row_number || s.column_letter
		FROM tickets t
		JOIN flight_seats fs ON fs.id = t.flight_seat_id
		JOIN seats s ON s.id = fs.seat_id
		WHERE t.order_id = $1
		ORDER BY s.row_number, s.column_letter
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.OrderID, &t.FlightSeatID, &t.PaidPrice, &t.SeatLabel); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		o.Tickets = append(o.Tickets, t)
	}

	return &o, rows.Err()
}

// ListOrdersByEmail returns a customer's orders, newest first.
func (r *Repository) ListOrdersByEmail(ctx context.Context, email string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_email, flight_id, status, created_at, cancelled_at
		FROM orders
		WHERE customer_email = $1
		ORDER BY created_at DESC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerEmail, &o.FlightID, &o.Status, &o.CreatedAt, &o.CancelledAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// CancelOrderCustomer performs a customer cancellation: the order moves to
// Cancelled-Customer, its seats return to Available with their price reset
// to the current class price on the flight, and the 5% fee quote is
// computed on the paid total. The order row is locked so racing
// cancellations of the same order serialize.
func (r *Repository) CancelOrderCustomer(ctx context.Context, id string, now time.Time) (*Order, status.Quote, error) {
	var quote status.Quote

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, quote, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		orderStatus status.OrderStatus
		flightID    string
	)
	err = tx.QueryRow(ctx, `
		SELECT status, flight_id FROM orders WHERE id = $1 FOR UPDATE
	`, id).Scan(&orderStatus, &flightID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, quote, ErrNotFound
		}
		return nil, quote, fmt.Errorf("failed to lock order: %w", err)
	}

	if orderStatus != status.OrderActive {
		return nil, quote, fmt.Errorf("order %s is %s and cannot be cancelled", id, orderStatus)
	}

	var (
		departure       time.Time
		durationMinutes int
	)
	err = tx.QueryRow(ctx, `
		SELECT f.departure_time, r.duration_minutes
		FROM flights f
		JOIN routes r ON r.id = f.route_id
		WHERE f.id = $1
	`, flightID).Scan(&departure, &durationMinutes)
	if err != nil {
		return nil, quote, fmt.Errorf("failed to read flight: %w", err)
	}

	if !status.CanCustomerCancel(departure, now) {
		return nil, quote, fmt.Errorf("cancellation window closed: departure within %v", status.CustomerCancelWindow)
	}

	var total float64
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(paid_price), 0) FROM tickets WHERE order_id = $1
	`, id).Scan(&total); err != nil {
		return nil, quote, fmt.Errorf("failed to total tickets: %w", err)
	}
	quote = status.CancellationQuote(total)

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status = 'Cancelled-Customer', cancelled_at = $1 WHERE id = $2
	`, now, id)
	if err != nil {
		return nil, quote, fmt.Errorf("failed to cancel order: %w", err)
	}

	// Release the order's seats unless another live ticket still claims
	// them, and reprice released seats at the current class price.
	_, err = tx.Exec(ctx, `
		UPDATE flight_seats fs
		SET status = 'Available',
		    price = COALESCE((
		        SELECT other.price
		        FROM flight_seats other
		        JOIN seats os ON os.id = other.seat_id
		        JOIN seats ms ON ms.id = fs.seat_id
		        WHERE other.flight_id = fs.flight_id
		          AND other.status = 'Available'
		          AND os.class = ms.class
		        ORDER BY other.price DESC
		        LIMIT 1
		    ), fs.price)
		WHERE fs.status = 'Sold'
		  AND fs.id IN (SELECT flight_seat_id FROM tickets WHERE order_id = $1)
		  AND NOT EXISTS (
		        SELECT 1
		        FROM tickets t
		        JOIN orders o ON o.id = t.order_id
		        WHERE t.flight_seat_id = fs.id
		          AND o.status NOT IN ('Cancelled-Customer', 'Cancelled-System')
		  )
	`, id)
	if err != nil {
		return nil, quote, fmt.Errorf("failed to release seats: %w", err)
	}

	if err := updateFlightOccupancyTx(ctx, tx, flightID); err != nil {
		return nil, quote, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, quote, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	order, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, quote, err
	}
	return order, quote, nil
}
