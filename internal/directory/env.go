package directory

import (
	"context"

	"legal-relay-backend/internal/database"
	"legal-relay-backend/internal/logger"
	"legal-relay-backend/internal/model"
)

// FromEnv connects the DynamoDB record store when AWS_REGION is set. It
// returns a nil Repository when lookups are not configured or the client
// cannot be built, in which case notifications must name their recipients.
func FromEnv(ctx context.Context, log *logger.Logger) Repository {
	return open(ctx, database.OptionsFromEnv(), log)
}

func open(ctx context.Context, opts database.Options, log *logger.Logger) Repository {
	if opts.Region == "" {
		log.Info("AWS_REGION not set, recipient lookups disabled")
		return nil
	}

	db, err := database.NewDynamoDBClient(ctx, opts)
	if err != nil {
		log.Warnf("dynamodb init failed, recipient lookups disabled: %v", err)
		return nil
	}
	if err := db.Ping(ctx, model.AppointmentsTable); err != nil {
		log.Warnf("appointments table unreachable: %v", err)
	}
	return NewDynamoRepository(db)
}
