package directory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"legal-relay-backend/internal/database"
	"legal-relay-backend/internal/logger"
	"legal-relay-backend/internal/model"
)

type fakeTable struct {
	items map[string]map[string]interface{}
	err   error
	calls []string
}

func (f *fakeTable) GetItem(_ context.Context, table string, key map[string]types.AttributeValue, out interface{}) error {
	f.calls = append(f.calls, table)
	if f.err != nil {
		return f.err
	}
	for _, v := range key {
		id := v.(*types.AttributeValueMemberS).Value
		item, ok := f.items[table+"/"+id]
		if !ok {
			return fmt.Errorf("%s: %w", table, database.ErrItemNotFound)
		}
		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return err
		}
		return attributevalue.UnmarshalMap(av, out)
	}
	return errors.New("empty key")
}

func TestAppointmentLookup(t *testing.T) {
	db := &fakeTable{items: map[string]map[string]interface{}{
		"Appointments/a1": {
			"appointmentId": "a1",
			"userId":        "u1",
			"lawyerId":      "l1",
			"status":        "confirmed",
		},
	}}
	repo := NewDynamoRepository(db)

	item, err := repo.Appointment(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.UserID != "u1" || item.LawyerID != "l1" || item.Status != model.AppointmentStatusConfirmed {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestDocumentLookupNotFound(t *testing.T) {
	repo := NewDynamoRepository(&fakeTable{})
	_, err := repo.Document(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBlankIDSkipsStore(t *testing.T) {
	db := &fakeTable{}
	repo := NewDynamoRepository(db)
	if _, err := repo.Appointment(context.Background(), "  "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(db.calls) != 0 {
		t.Fatalf("blank id must not hit the store")
	}
}

func TestStoreErrorIsWrapped(t *testing.T) {
	boom := errors.New("throttled")
	repo := NewDynamoRepository(&fakeTable{err: boom})
	_, err := repo.Document(context.Background(), "d1")
	if !errors.Is(err, boom) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestFromEnvWithoutRegionDisablesLookups(t *testing.T) {
	t.Setenv("AWS_REGION", "")

	if repo := FromEnv(context.Background(), logger.Nop()); repo != nil {
		t.Fatalf("expected nil repository without AWS_REGION, got %T", repo)
	}
}
