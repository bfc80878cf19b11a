package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/personal-assistant/chatbot/internal/domain"
)

const (
	attrKey       = "key"
	attrValue     = "value"
	attrCreatedAt = "created_at"
	attrUpdatedAt = "updated_at"
)

// dynamodbAPI is the minimal DynamoDB interface required by DynamoStore.
// Defined here for testability.
type dynamodbAPI interface {
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps personal info in a DynamoDB table whose partition key is
// the string attribute "key".
type DynamoStore struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// NewDynamo creates a new DynamoDB-backed store.
func NewDynamo(api dynamodbAPI, tableName string) (*DynamoStore, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DynamoStore{api: api, tableName: tableName, now: time.Now}, nil
}

// GetAll scans the whole table, following pagination, and returns entries in
// first-insertion order.
func (c *DynamoStore) GetAll(ctx context.Context) ([]domain.PersonalInfoEntry, error) {
	type row struct {
		entry   domain.PersonalInfoEntry
		created int64
	}
	var rows []row

	var startKey map[string]types.AttributeValue
	for {
		out, err := c.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(c.tableName),
			ProjectionExpression: aws.String("#k, #v, #c"),
			ExpressionAttributeNames: map[string]string{
				"#k": attrKey,
				"#v": attrValue,
				"#c": attrCreatedAt,
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("repository: GetAll scan: %w", err)
		}
		for _, item := range out.Items {
			key, err := strAttr(item, attrKey)
			if err != nil {
				return nil, fmt.Errorf("repository: GetAll unmarshal: %w", err)
			}
			value, _ := strAttr(item, attrValue) // allow empty
			created, _ := int64Attr(item, attrCreatedAt)
			rows = append(rows, row{
				entry:   domain.PersonalInfoEntry{Key: key, Value: value},
				created: created,
			})
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		if a.created != b.created {
			if a.created < b.created {
				return -1
			}
			return 1
		}
		return strings.Compare(a.entry.Key, b.entry.Key)
	})

	entries := make([]domain.PersonalInfoEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry)
	}
	return entries, nil
}

// Upsert writes the value for the normalized key. created_at is only set on
// first write so overwrites keep their match order.
func (c *DynamoStore) Upsert(ctx context.Context, key, value string) (domain.PersonalInfoEntry, error) {
	entry := domain.NewPersonalInfoEntry(key, value)
	if entry.Key == "" {
		return domain.PersonalInfoEntry{}, ErrEmptyKey
	}
	now := c.now().UTC()

	_, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			attrKey: &types.AttributeValueMemberS{Value: entry.Key},
		},
		UpdateExpression: aws.String("SET #v = :v, #u = :u, #c = if_not_exists(#c, :c)"),
		ExpressionAttributeNames: map[string]string{
			"#v": attrValue,
			"#u": attrUpdatedAt,
			"#c": attrCreatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: entry.Value},
			":u": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":c": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixNano(), 10)},
		},
	})
	if err != nil {
		return domain.PersonalInfoEntry{}, fmt.Errorf("repository: Upsert %q: %w", entry.Key, err)
	}
	return entry, nil
}

func (c *DynamoStore) FindMatchingKey(ctx context.Context, text string) (domain.PersonalInfoEntry, bool, error) {
	entries, err := c.GetAll(ctx)
	if err != nil {
		return domain.PersonalInfoEntry{}, false, fmt.Errorf("repository: FindMatchingKey: %w", err)
	}
	e, ok := domain.MatchEntry(entries, text)
	return e, ok, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func int64Attr(item map[string]types.AttributeValue, key string) (int64, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
