package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/nluflow/internal/models"
	"github.com/spacesedan/nluflow/internal/utils"
)

const (
	ANALYSIS_RESULTS_TABLE_NAME = "AnalysisResults"
	RESULTS_TTL                 = 7 * 24 * time.Hour
	MAX_UNPROCESSED_RETRIES     = 3
)

// DynamoDBAPI is the part of *dynamodb.Client the results store uses.
type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type ResultsTable struct {
	client  DynamoDBAPI
	table   string
	backoff time.Duration
	now     func() time.Time
}

func NewResultsTable(client DynamoDBAPI) *ResultsTable {
	return &ResultsTable{
		client:  client,
		table:   ANALYSIS_RESULTS_TABLE_NAME,
		backoff: 500 * time.Millisecond,
		now:     time.Now,
	}
}

// BatchPutRecords writes records 25 at a time, retrying unprocessed items.
func (t *ResultsTable) BatchPutRecords(ctx context.Context, records []models.AnalyzedRecord) error {
	expiresAt := t.now().Add(RESULTS_TTL)

	for _, chunk := range utils.Chunk(records, utils.DYNAMODB_BATCH_SIZE) {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		writeRequests := make([]types.WriteRequest, 0, len(chunk))
		for _, record := range chunk {
			item, err := RecordToItem(record, expiresAt)
			if err != nil {
				return err
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := t.batchWrite(ctx, writeRequests); err != nil {
			return err
		}
	}

	slog.Info("[DynamoDB] Successfully stored analysis records",
		slog.Int("count", len(records)))
	return nil
}

func (t *ResultsTable) batchWrite(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := t.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			t.table: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write analysis records: %w", err)
	}

	retryCount := 0
	backoff := t.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < MAX_UNPROCESSED_RETRIES {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[t.table])))

		out, err = t.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[t.table]); remaining > 0 {
		slog.Error("[DynamoDB] Some items were not written even after retries",
			slog.Int("remaining", remaining))
		return fmt.Errorf("[DynamoDB] %d items unprocessed after %d retries", remaining, MAX_UNPROCESSED_RETRIES)
	}
	return nil
}

// GetRecord loads the record for jobID. A missing job returns nil, nil.
func (t *ResultsTable) GetRecord(ctx context.Context, jobID string) (*models.AnalyzedRecord, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.table),
		Key: map[string]types.AttributeValue{
			"job_id": &types.AttributeValueMemberS{Value: jobID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] GetItem failed for %s: %w", jobID, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return ItemToRecord(out.Item)
}

// RecordToItem maps a record onto a table item. Results are kept as a JSON
// string so the item shape does not follow the result schema.
func RecordToItem(record models.AnalyzedRecord, expiresAt time.Time) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal record %s: %w", record.JobID, err)
	}

	if record.Results != nil {
		results, err := json.Marshal(record.Results)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Failed to marshal results %s: %w", record.JobID, err)
		}
		item["results"] = &types.AttributeValueMemberS{Value: string(results)}
	}
	item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Unix(), 10)}
	return item, nil
}

func ItemToRecord(item map[string]types.AttributeValue) (*models.AnalyzedRecord, error) {
	var record models.AnalyzedRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal record: %w", err)
	}

	if raw, ok := item["results"].(*types.AttributeValueMemberS); ok {
		var results models.AnalysisResults
		if err := json.Unmarshal([]byte(raw.Value), &results); err != nil {
			return nil, fmt.Errorf("[DynamoDB] Unable to decode results for %s: %w", record.JobID, err)
		}
		record.Results = &results
	}
	return &record, nil
}
