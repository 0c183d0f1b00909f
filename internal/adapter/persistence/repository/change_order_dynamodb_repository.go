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
	defaultChangeOrdersTableName = "change_orders"
	changeOrdersJobIDIndex       = "job_id-index"
)

type changeOrderItem struct {
	ID           string `dynamodbav:"id"`
	JobID        string `dynamodbav:"job_id"`
	ProposedBy   string `dynamodbav:"proposed_by"`
	AmountCents  int64  `dynamodbav:"amount_cents"`
	Description  string `dynamodbav:"description"`
	Status       string `dynamodbav:"status"`
	PaymentID    string `dynamodbav:"payment_id,omitempty"`
	FundsApplied bool   `dynamodbav:"funds_applied"`
	ExpiresAt    string `dynamodbav:"expires_at"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
	Version      int64  `dynamodbav:"version"`
}

// ChangeOrderDynamoRepository persists ChangeOrder entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: job_id-index (PK: job_id)
//
// ApplyFunds is a TransactWriteItems spanning the change_orders and jobs
// tables so the paid order and the job's incremented additional-work total
// commit together. The funds_applied guard on the order makes the increment
// exactly-once under crash-recovery replays.

type ChangeOrderDynamoRepository struct {
	ddb           *dynamodb.Client
	tableName     string
	jobsTableName string
}

var _ interfaces.ChangeOrderRepository = (*ChangeOrderDynamoRepository)(nil)

func NewChangeOrderDynamoRepository(ddb *dynamodb.Client) *ChangeOrderDynamoRepository {
	return &ChangeOrderDynamoRepository{
		ddb:           ddb,
		tableName:     getenvDefault("CHANGE_ORDERS_TABLE", defaultChangeOrdersTableName),
		jobsTableName: getenvDefault("JOBS_TABLE", defaultJobsTableName),
	}
}

func (r *ChangeOrderDynamoRepository) Create(ctx context.Context, order entities.ChangeOrder) (entities.ChangeOrder, error) {
	av, err := attributevalue.MarshalMap(toChangeOrderItem(order))
	if err != nil {
		return entities.ChangeOrder{}, err
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
		return entities.ChangeOrder{}, conflictOr(err)
	}
	return order, nil
}

func (r *ChangeOrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.ChangeOrder, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.ChangeOrder{}, err
	}
	if len(out.Item) == 0 {
		return entities.ChangeOrder{}, nil
	}

	var it changeOrderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.ChangeOrder{}, err
	}
	return fromChangeOrderItem(it), nil
}

func (r *ChangeOrderDynamoRepository) ListByJobID(ctx context.Context, jobID string) ([]entities.ChangeOrder, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(changeOrdersJobIDIndex),
		KeyConditionExpression: aws.String("job_id = :jid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":jid": &types.AttributeValueMemberS{Value: jobID},
		},
	})
	if err != nil {
		return nil, err
	}

	orders := make([]entities.ChangeOrder, 0, len(out.Items))
	for _, raw := range out.Items {
		var it changeOrderItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		orders = append(orders, fromChangeOrderItem(it))
	}
	return orders, nil
}

func (r *ChangeOrderDynamoRepository) Update(ctx context.Context, order entities.ChangeOrder, expectedVersion int64) (entities.ChangeOrder, error) {
	order.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toChangeOrderItem(order))
	if err != nil {
		return entities.ChangeOrder{}, err
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
		return entities.ChangeOrder{}, conflictOr(err)
	}
	return order, nil
}

func (r *ChangeOrderDynamoRepository) ApplyFunds(ctx context.Context, order entities.ChangeOrder, orderVersion int64, job entities.Job, jobVersion int64) (entities.ChangeOrder, entities.Job, error) {
	order.Version = orderVersion + 1
	job.Version = jobVersion + 1

	orderAV, err := attributevalue.MarshalMap(toChangeOrderItem(order))
	if err != nil {
		return entities.ChangeOrder{}, entities.Job{}, err
	}
	jobAV, err := attributevalue.MarshalMap(toJobItem(job))
	if err != nil {
		return entities.ChangeOrder{}, entities.Job{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                orderAV,
					ConditionExpression: aws.String("#version = :expected AND #funds_applied = :no"),
					ExpressionAttributeNames: map[string]string{
						"#version":       "version",
						"#funds_applied": "funds_applied",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":expected": &types.AttributeValueMemberN{Value: formatInt(orderVersion)},
						":no":       &types.AttributeValueMemberBOOL{Value: false},
					},
				},
			},
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
		},
	})
	if err != nil {
		return entities.ChangeOrder{}, entities.Job{}, conflictOr(err)
	}
	return order, job, nil
}

func (r *ChangeOrderDynamoRepository) ListExpiring(ctx context.Context, before time.Time) ([]entities.ChangeOrder, error) {
	out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#expires_at < :before AND #status IN (:pending, :approved, :escrow)"),
		ExpressionAttributeNames: map[string]string{
			"#expires_at": "expires_at",
			"#status":     "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":before":   &types.AttributeValueMemberS{Value: formatTime(before)},
			":pending":  &types.AttributeValueMemberS{Value: string(entities.ChangeOrderStatusPending)},
			":approved": &types.AttributeValueMemberS{Value: string(entities.ChangeOrderStatusApproved)},
			":escrow":   &types.AttributeValueMemberS{Value: string(entities.ChangeOrderStatusEscrow)},
		},
	})
	if err != nil {
		return nil, err
	}

	orders := make([]entities.ChangeOrder, 0, len(out.Items))
	for _, raw := range out.Items {
		var it changeOrderItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		orders = append(orders, fromChangeOrderItem(it))
	}
	return orders, nil
}

func toChangeOrderItem(o entities.ChangeOrder) changeOrderItem {
	return changeOrderItem{
		ID:           o.ID,
		JobID:        o.JobID,
		ProposedBy:   o.ProposedBy,
		AmountCents:  o.AmountCents,
		Description:  o.Description,
		Status:       string(o.Status),
		PaymentID:    o.PaymentID,
		FundsApplied: o.FundsApplied,
		ExpiresAt:    formatTime(o.ExpiresAt),
		CreatedAt:    formatTime(o.CreatedAt),
		UpdatedAt:    formatTime(o.UpdatedAt),
		Version:      o.Version,
	}
}

func fromChangeOrderItem(it changeOrderItem) entities.ChangeOrder {
	return entities.ChangeOrder{
		ID:           it.ID,
		JobID:        it.JobID,
		ProposedBy:   it.ProposedBy,
		AmountCents:  it.AmountCents,
		Description:  it.Description,
		Status:       entities.ChangeOrderStatus(it.Status),
		PaymentID:    it.PaymentID,
		FundsApplied: it.FundsApplied,
		ExpiresAt:    parseTime(it.ExpiresAt),
		CreatedAt:    parseTime(it.CreatedAt),
		UpdatedAt:    parseTime(it.UpdatedAt),
		Version:      it.Version,
	}
}
