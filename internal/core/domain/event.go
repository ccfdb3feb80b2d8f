package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is the read-side projection supplied by the event catalog
// collaborator: just enough to price an order and route it to the organizer.
type Event struct {
	ID          uuid.UUID
	OrganizerID uuid.UUID
	Title       string
	TicketTypes []TicketType
}

// TicketType is one priced ticket tier on an event.
type TicketType struct {
	ID        uuid.UUID
	Name      string
	Price     int64 // smallest currency unit
	Remaining int
}

// TicketType returns the ticket type with the given id, or nil.
func (e *Event) TicketType(id uuid.UUID) *TicketType {
	for i := range e.TicketTypes {
		if e.TicketTypes[i].ID == id {
			return &e.TicketTypes[i]
		}
	}
	return nil
}

// TicketSelection is a buyer's choice of one ticket type and quantity.
type TicketSelection struct {
	TicketTypeID uuid.UUID `json:"id"`
	Quantity     int       `json:"quantity"`
}

// Attendee is the purchase record appended to an event on successful capture.
type Attendee struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	BuyerID   uuid.UUID
	OrderID   string // provider order id
	Tickets   []TicketSelection
	Amount    int64
	CreatedAt time.Time
}
