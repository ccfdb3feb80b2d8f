package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ticketpay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EventCatalogAdapter implements ports.EventCatalog over the catalog tables
// owned by the event CRUD collaborator. Read-side only, plus the attendee
// append on successful capture.
type EventCatalogAdapter struct {
	pool Pool
}

// NewEventCatalogAdapter creates a new EventCatalogAdapter.
func NewEventCatalogAdapter(pool Pool) *EventCatalogAdapter {
	return &EventCatalogAdapter{pool: pool}
}

// GetEvent fetches an event and its ticket types.
func (a *EventCatalogAdapter) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	query := `SELECT id, organizer_id, title FROM events WHERE id = $1`

	e := &domain.Event{}
	err := a.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.OrganizerID, &e.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	ticketQuery := `SELECT id, name, price, remaining FROM ticket_types WHERE event_id = $1 ORDER BY price ASC`
	rows, err := a.pool.Query(ctx, ticketQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket types: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tt domain.TicketType
		if err := rows.Scan(&tt.ID, &tt.Name, &tt.Price, &tt.Remaining); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		e.TicketTypes = append(e.TicketTypes, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket types: %w", err)
	}
	return e, nil
}

// AddAttendee appends the purchase record and decrements remaining ticket
// quantities, inside the capture's DB transaction.
func (a *EventCatalogAdapter) AddAttendee(ctx context.Context, tx pgx.Tx, att *domain.Attendee) error {
	tickets, err := json.Marshal(att.Tickets)
	if err != nil {
		return fmt.Errorf("marshal attendee tickets: %w", err)
	}

	query := `INSERT INTO attendees (id, event_id, buyer_id, order_id, tickets, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, query, att.ID, att.EventID, att.BuyerID, att.OrderID, tickets, att.Amount, att.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attendee: %w", err)
	}

	for _, sel := range att.Tickets {
		decrement := `UPDATE ticket_types SET remaining = remaining - $1
			WHERE id = $2 AND remaining >= $1`
		tag, err := tx.Exec(ctx, decrement, sel.Quantity, sel.TicketTypeID)
		if err != nil {
			return fmt.Errorf("decrement ticket quantity: %w", err)
		}
		// Oversell at capture time is tolerated: the order was validated at
		// creation and the funds are already captured.
		if tag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `UPDATE ticket_types SET remaining = 0 WHERE id = $1`, sel.TicketTypeID); err != nil {
				return fmt.Errorf("floor ticket quantity: %w", err)
			}
		}
	}
	return nil
}
