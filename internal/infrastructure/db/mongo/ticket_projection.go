package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bugtrail/accounts-api/internal/core/domain"
)

// mongoTicket holds exactly the projected ticket fields; the full ticket
// document is owned by the ticket service and never decoded here.
type mongoTicket struct {
	ID           primitive.ObjectID `bson:"_id"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	CreatedBy    string             `bson:"created_by"`
	Dev          string             `bson:"dev"`
	DateCreated  time.Time          `bson:"date_created"`
	DueDate      time.Time          `bson:"due_date"`
	Type         string             `bson:"type"`
	Priority     string             `bson:"priority"`
	Status       string             `bson:"status"`
	DateResolved *time.Time         `bson:"date_resolved,omitempty"`
}

// ticketProjection is the read-time join contract for user→ticket references.
var ticketProjection = bson.M{
	"title":         1,
	"description":   1,
	"created_by":    1,
	"dev":           1,
	"date_created":  1,
	"due_date":      1,
	"type":          1,
	"priority":      1,
	"status":        1,
	"date_resolved": 1,
}

// loadTickets fetches the projection for the given ticket ids in one query
// and returns them keyed by hex id.
func (r *UserRepository) loadTickets(ctx context.Context, ids []primitive.ObjectID) (map[string]domain.TicketRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	opts := options.Find().SetProjection(ticketProjection)
	cur, err := r.tickets.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tickets: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTicket
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}

	byID := make(map[string]domain.TicketRef, len(docs))
	for _, t := range docs {
		byID[t.ID.Hex()] = domain.TicketRef{
			ID:           t.ID.Hex(),
			Title:        t.Title,
			Description:  t.Description,
			CreatedBy:    t.CreatedBy,
			Dev:          t.Dev,
			DateCreated:  t.DateCreated,
			DueDate:      t.DueDate,
			Type:         t.Type,
			Priority:     t.Priority,
			Status:       t.Status,
			DateResolved: t.DateResolved,
		}
	}
	return byID, nil
}

// projectTickets resolves references in the user's stored order, dropping
// dangling ids (the referenced ticket may have been deleted independently).
func projectTickets(ids []primitive.ObjectID, byID map[string]domain.TicketRef) []domain.TicketRef {
	refs := make([]domain.TicketRef, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id.Hex()]; ok {
			refs = append(refs, t)
		}
	}
	return refs
}
