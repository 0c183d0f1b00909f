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

const defaultJobsTableName = "jobs"

type jobItem struct {
	ID                  string `dynamodbav:"id"`
	DisplayNumber       int64  `dynamodbav:"display_number"`
	CustomerID          string `dynamodbav:"customer_id"`
	MechanicID          string `dynamodbav:"mechanic_id,omitempty"`
	Status              string `dynamodbav:"status"`
	Urgency             string `dynamodbav:"urgency"`
	Category            string `dynamodbav:"category"`
	Description         string `dynamodbav:"description,omitempty"`
	RequestedPriceCents int64  `dynamodbav:"requested_price_cents"`
	AgreedPriceCents    int64  `dynamodbav:"agreed_price_cents"`
	AdditionalWorkCents int64  `dynamodbav:"additional_work_cents"`
	ExpiresAt           string `dynamodbav:"expires_at"`
	CreatedAt           string `dynamodbav:"created_at"`
	UpdatedAt           string `dynamodbav:"updated_at"`
	Version             int64  `dynamodbav:"version"`
}

// JobDynamoRepository persists Job entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Every write is a whole-item put guarded by the version attribute, so a
// stale writer fails the condition instead of clobbering a newer row.

type JobDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.JobRepository = (*JobDynamoRepository)(nil)

func NewJobDynamoRepository(ddb *dynamodb.Client) *JobDynamoRepository {
	return &JobDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("JOBS_TABLE", defaultJobsTableName),
	}
}

func (r *JobDynamoRepository) Create(ctx context.Context, job entities.Job) (entities.Job, error) {
	av, err := attributevalue.MarshalMap(toJobItem(job))
	if err != nil {
		return entities.Job{}, err
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
		return entities.Job{}, conflictOr(err)
	}
	return job, nil
}

func (r *JobDynamoRepository) GetByID(ctx context.Context, id string) (entities.Job, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Job{}, err
	}
	if len(out.Item) == 0 {
		return entities.Job{}, nil
	}

	var it jobItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Job{}, err
	}
	return fromJobItem(it), nil
}

func (r *JobDynamoRepository) Update(ctx context.Context, job entities.Job, expectedVersion int64) (entities.Job, error) {
	job.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toJobItem(job))
	if err != nil {
		return entities.Job{}, err
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
		return entities.Job{}, conflictOr(err)
	}
	return job, nil
}

func (r *JobDynamoRepository) ListExpiring(ctx context.Context, before time.Time) ([]entities.Job, error) {
	out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#expires_at < :before AND NOT #status IN (:completed, :cancelled)"),
		ExpressionAttributeNames: map[string]string{
			"#expires_at": "expires_at",
			"#status":     "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":before":    &types.AttributeValueMemberS{Value: formatTime(before)},
			":completed": &types.AttributeValueMemberS{Value: string(entities.JobStatusCompleted)},
			":cancelled": &types.AttributeValueMemberS{Value: string(entities.JobStatusCancelled)},
		},
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]entities.Job, 0, len(out.Items))
	for _, raw := range out.Items {
		var it jobItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		jobs = append(jobs, fromJobItem(it))
	}
	return jobs, nil
}

func toJobItem(j entities.Job) jobItem {
	return jobItem{
		ID:                  j.ID,
		DisplayNumber:       j.DisplayNumber,
		CustomerID:          j.CustomerID,
		MechanicID:          j.MechanicID,
		Status:              string(j.Status),
		Urgency:             string(j.Urgency),
		Category:            j.Category,
		Description:         j.Description,
		RequestedPriceCents: j.RequestedPriceCents,
		AgreedPriceCents:    j.AgreedPriceCents,
		AdditionalWorkCents: j.AdditionalWorkCents,
		ExpiresAt:           formatTime(j.ExpiresAt),
		CreatedAt:           formatTime(j.CreatedAt),
		UpdatedAt:           formatTime(j.UpdatedAt),
		Version:             j.Version,
	}
}

func fromJobItem(it jobItem) entities.Job {
	return entities.Job{
		ID:                  it.ID,
		DisplayNumber:       it.DisplayNumber,
		CustomerID:          it.CustomerID,
		MechanicID:          it.MechanicID,
		Status:              entities.JobStatus(it.Status),
		Urgency:             entities.Urgency(it.Urgency),
		Category:            it.Category,
		Description:         it.Description,
		RequestedPriceCents: it.RequestedPriceCents,
		AgreedPriceCents:    it.AgreedPriceCents,
		AdditionalWorkCents: it.AdditionalWorkCents,
		ExpiresAt:           parseTime(it.ExpiresAt),
		CreatedAt:           parseTime(it.CreatedAt),
		UpdatedAt:           parseTime(it.UpdatedAt),
		Version:             it.Version,
	}
}
