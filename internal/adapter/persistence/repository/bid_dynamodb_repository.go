package repository

import (
	"context"
	"time"

	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultBidsTableName = "bids"
	bidsJobIDIndex       = "job_id-index"
)

type bidItem struct {
	ID         string `dynamodbav:"id"`
	JobID      string `dynamodbav:"job_id"`
	MechanicID string `dynamodbav:"mechanic_id"`
	PriceCents int64  `dynamodbav:"price_cents"`
	Message    string `dynamodbav:"message,omitempty"`
	Status     string `dynamodbav:"status"`
	ExpiresAt  string `dynamodbav:"expires_at"`
	CreatedAt  string `dynamodbav:"created_at"`
	Version    int64  `dynamodbav:"version"`
}

// BidDynamoRepository persists Bid entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: job_id-index (PK: job_id)
//
// AcceptBid is a single TransactWriteItems spanning the bids and jobs
// tables: the job version check, the winner's pending check and every
// sibling's pending check all ride in one transaction, so two customers
// accepting concurrently can never both win.

type BidDynamoRepository struct {
	ddb           *dynamodb.Client
	tableName     string
	jobsTableName string
}

var _ interfaces.BidRepository = (*BidDynamoRepository)(nil)

func NewBidDynamoRepository(ddb *dynamodb.Client) *BidDynamoRepository {
	return &BidDynamoRepository{
		ddb:           ddb,
		tableName:     getenvDefault("BIDS_TABLE", defaultBidsTableName),
		jobsTableName: getenvDefault("JOBS_TABLE", defaultJobsTableName),
	}
}

func (r *BidDynamoRepository) Create(ctx context.Context, bid entities.Bid) (entities.Bid, error) {
	av, err := attributevalue.MarshalMap(toBidItem(bid))
	if err != nil {
		return entities.Bid{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Bid{}, conflictOr(err)
	}
	return bid, nil
}

func (r *BidDynamoRepository) GetByID(ctx context.Context, id string) (entities.Bid, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Bid{}, err
	}
	if len(out.Item) == 0 {
		return entities.Bid{}, nil
	}

	var it bidItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Bid{}, err
	}
	return fromBidItem(it), nil
}

func (r *BidDynamoRepository) ListByJobID(ctx context.Context, jobID string) ([]entities.Bid, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(bidsJobIDIndex),
		KeyConditionExpression: aws.String("job_id = :jid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":jid": &types.AttributeValueMemberS{Value: jobID},
		},
	})
	if err != nil {
		return nil, err
	}

	bids := make([]entities.Bid, 0, len(out.Items))
	for _, raw := range out.Items {
		var it bidItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		bids = append(bids, fromBidItem(it))
	}
	return bids, nil
}

func (r *BidDynamoRepository) Update(ctx context.Context, bid entities.Bid, expectedVersion int64) (entities.Bid, error) {
	bid.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toBidItem(bid))
	if err != nil {
		return entities.Bid{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("#version = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#version": "version",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: formatInt(expectedVersion)},
		},
	})
	if err != nil {
		return entities.Bid{}, conflictOr(err)
	}
	return bid, nil
}

func (r *BidDynamoRepository) AcceptBid(ctx context.Context, job entities.Job, jobVersion int64, winner entities.Bid, siblings []entities.Bid) (entities.Job, entities.Bid, error) {
	job.Version = jobVersion + 1
	jobAV, err := attributevalue.MarshalMap(toJobItem(job))
	if err != nil {
		return entities.Job{}, entities.Bid{}, err
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(r.jobsTableName),
				Item:                jobAV,
				ConditionExpression: aws.String("#version = :expected"),
				ExpressionAttributeNames: map[string]string{
					"#version": "version",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":expected": &types.AttributeValueMemberN{Value: formatInt(jobVersion)},
				},
			},
		},
	}

	put, bumped, err := r.pendingGuardedPut(winner)
	if err != nil {
		return entities.Job{}, entities.Bid{}, err
	}
	winner = bumped
	items = append(items, types.TransactWriteItem{Put: put})

	for _, sib := range siblings {
		put, _, err := r.pendingGuardedPut(sib)
		if err != nil {
			return entities.Job{}, entities.Bid{}, err
		}
		items = append(items, types.TransactWriteItem{Put: put})
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return entities.Job{}, entities.Bid{}, conflictOr(err)
	}
	return job, winner, nil
}

// pendingGuardedPut writes bid with its version bumped, conditioned on the
// stored row still being pending.
func (r *BidDynamoRepository) pendingGuardedPut(bid entities.Bid) (*types.Put, entities.Bid, error) {
	bid.Version++
	av, err := attributevalue.MarshalMap(toBidItem(bid))
	if err != nil {
		return nil, entities.Bid{}, err
	}
	return &types.Put{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: string(entities.BidStatusPending)},
		},
	}, bid, nil
}

func (r *BidDynamoRepository) ListExpiring(ctx context.Context, before time.Time) ([]entities.Bid, error) {
	out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#status = :pending AND #expires_at < :before"),
		ExpressionAttributeNames: map[string]string{
			"#status":     "status",
			"#expires_at": "expires_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pending": &types.AttributeValueMemberS{Value: string(entities.BidStatusPending)},
			":before":  &types.AttributeValueMemberS{Value: formatTime(before)},
		},
	})
	if err != nil {
		return nil, err
	}

	bids := make([]entities.Bid, 0, len(out.Items))
	for _, raw := range out.Items {
		var it bidItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		bids = append(bids, fromBidItem(it))
	}
	return bids, nil
}

func toBidItem(b entities.Bid) bidItem {
	return bidItem{
		ID:         b.ID,
		JobID:      b.JobID,
		MechanicID: b.MechanicID,
		PriceCents: b.PriceCents,
		Message:    b.Message,
		Status:     string(b.Status),
		ExpiresAt:  formatTime(b.ExpiresAt),
		CreatedAt:  formatTime(b.CreatedAt),
		Version:    b.Version,
	}
}

func fromBidItem(it bidItem) entities.Bid {
	return entities.Bid{
		ID:         it.ID,
		JobID:      it.JobID,
		MechanicID: it.MechanicID,
		PriceCents: it.PriceCents,
		Message:    it.Message,
		Status:     entities.BidStatus(it.Status),
		ExpiresAt:  parseTime(it.ExpiresAt),
		CreatedAt:  parseTime(it.CreatedAt),
		Version:    it.Version,
	}
}
