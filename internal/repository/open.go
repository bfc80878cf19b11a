package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/personal-assistant/chatbot/internal/config"
)

// Open builds the Store selected by cfg. loadAWS is only called for the
// dynamodb backend. The returned close func releases the store's resources.
func Open(ctx context.Context, cfg config.StoreConfig, loadAWS func(context.Context) (aws.Config, error)) (Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.BackendDynamoDB:
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("repository: load AWS config: %w", err)
		}
		s, err := NewDynamo(dynamodb.NewFromConfig(awsCfg), cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("repository: unknown backend %q", cfg.Backend)
	}
}
