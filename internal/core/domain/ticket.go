package domain

import "time"

// TicketRef is the bounded projection of a ticket returned on user reads.
// Tickets are owned by the ticket collection; users only hold back-references,
// and reads populate exactly this field set rather than the full document.
type TicketRef struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CreatedBy    string     `json:"created_by"`
	Dev          string     `json:"dev"`
	DateCreated  time.Time  `json:"date_created"`
	DueDate      time.Time  `json:"due_date"`
	Type         string     `json:"type"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	DateResolved *time.Time `json:"date_resolved,omitempty"`
}
