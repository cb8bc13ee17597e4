package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/matan25/flytau/internal/database"
	"github.com/matan25/flytau/internal/failure"
	"github.com/matan25/flytau/internal/status"
	"github.com/rs/zerolog/log"
)

// CreateOrder books seats for a guest. An advisory Redis lock per seat
// fronts the transaction so racing requests fail fast; the database
// compare-and-set inside the transaction is the real arbiter.
func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*database.Order, error) {
	flight, err := s.GetFlight(ctx, req.FlightID)
	if err != nil {
		return nil, err
	}

	if flight.Status == status.FlightCancelled || flight.Status == status.FlightCompleted {
		return nil, failure.Unprocessable("flight is " + strings.ToLower(string(flight.Status)))
	}
	if !flight.DepartureTime.After(s.now()) {
		return nil, failure.Unprocessable("flight has already departed")
	}

	lockOwner := uuid.New().String()
	if s.locker != nil {
		ok, err := s.locker.LockAll(ctx, req.FlightSeatIDs, lockOwner)
		if err != nil {
			log.Warn().Err(err).Msg("Seat lock unavailable, relying on database compare-and-set")
		} else if !ok {
			return nil, failure.Conflict("some selected seats are being booked right now, please retry")
		} else {
			defer func() {
				if err := s.locker.UnlockAll(ctx, req.FlightSeatIDs, lockOwner); err != nil {
					log.Warn().Err(err).Msg("Failed to release seat locks")
				}
			}()
		}
	}

	order, err := s.repo.CreateOrder(ctx, req.CustomerEmail, req.FlightID, req.FlightSeatIDs)
	if err != nil {
		if errors.Is(err, database.ErrSeatTaken) {
			return nil, failure.Conflict("seat already taken, please reselect")
		}
		return nil, failure.InternalError(err)
	}

	log.Info().Str("order", order.ID).Str("flight", req.FlightID).
		Int("seats", len(req.FlightSeatIDs)).Msg("Order created")

	s.broadcastFlight(ctx, req.FlightID)
	return order, nil
}

// GetOrder looks up an order for a guest. The customer email must match;
// a mismatch reads as not found so order IDs cannot be enumerated.
func (s *service) GetOrder(ctx context.Context, orderID, customerEmail string) (*database.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("order")
		}
		return nil, failure.InternalError(err)
	}
	if !strings.EqualFold(order.CustomerEmail, customerEmail) {
		return nil, failure.NotFound("order")
	}
	return order, nil
}

// CancelOrder performs a customer cancellation with the 5% fee, allowed
// strictly more than 36 hours before departure.
func (s *service) CancelOrder(ctx context.Context, orderID, customerEmail string) (*CancellationResult, error) {
	existing, err := s.GetOrder(ctx, orderID, customerEmail)
	if err != nil {
		return nil, err
	}

	order, quote, err := s.repo.CancelOrderCustomer(ctx, orderID, s.now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, failure.NotFound("order")
		}
		return nil, failure.Unprocessable(err.Error())
	}

	log.Info().Str("order", orderID).Float64("fee", quote.Fee).
		Float64("refund", quote.Refund).Msg("Order cancelled by customer")

	s.broadcastFlight(ctx, existing.FlightID)

	return &CancellationResult{
		Order:  order,
		Fee:    quote.Fee,
		Refund: quote.Refund,
	}, nil
}
