// Package directory resolves appointment and document records owned by the
// main application so notifications can find their recipients.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"legal-relay-backend/internal/database"
	"legal-relay-backend/internal/model"
)

var ErrNotFound = errors.New("directory: record not found")

type Repository interface {
	Appointment(ctx context.Context, appointmentID string) (model.AppointmentItem, error)
	Document(ctx context.Context, documentID string) (model.DocumentItem, error)
}

// ItemGetter is the part of database.DynamoDBClient the repository needs.
type ItemGetter interface {
	GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue, out interface{}) error
}

type DynamoRepository struct {
	db                ItemGetter
	appointmentsTable string
	documentsTable    string
}

func NewDynamoRepository(db ItemGetter) *DynamoRepository {
	return &DynamoRepository{
		db:                db,
		appointmentsTable: model.AppointmentsTable,
		documentsTable:    model.DocumentsTable,
	}
}

func (r *DynamoRepository) Appointment(ctx context.Context, appointmentID string) (model.AppointmentItem, error) {
	var item model.AppointmentItem
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return item, fmt.Errorf("appointment: %w", ErrNotFound)
	}
	if err := r.get(ctx, r.appointmentsTable, database.StringKey("appointmentId", appointmentID), &item); err != nil {
		return item, fmt.Errorf("appointment %s: %w", appointmentID, err)
	}
	return item, nil
}

func (r *DynamoRepository) Document(ctx context.Context, documentID string) (model.DocumentItem, error) {
	var item model.DocumentItem
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return item, fmt.Errorf("document: %w", ErrNotFound)
	}
	if err := r.get(ctx, r.documentsTable, database.StringKey("documentId", documentID), &item); err != nil {
		return item, fmt.Errorf("document %s: %w", documentID, err)
	}
	return item, nil
}

func (r *DynamoRepository) get(ctx context.Context, table string, key map[string]types.AttributeValue, out interface{}) error {
	err := r.db.GetItem(ctx, table, key, out)
	if errors.Is(err, database.ErrItemNotFound) {
		return ErrNotFound
	}
	return err
}
