package repository

import (
	"context"

	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentsTableName    = "payments"
	defaultPaymentKeysTableName = "payment_keys"
	paymentsJobIDIndex          = "job_id-index"
)

type paymentItem struct {
	ID               string `dynamodbav:"id"`
	JobID            string `dynamodbav:"job_id"`
	ChangeOrderID    string `dynamodbav:"change_order_id,omitempty"`
	AmountCents      int64  `dynamodbav:"amount_cents"`
	PlatformFeeCents int64  `dynamodbav:"platform_fee_cents"`
	PayeeCents       int64  `dynamodbav:"payee_cents"`
	Method           string `dynamodbav:"method"`
	Status           string `dynamodbav:"status"`
	AttemptCount     int    `dynamodbav:"attempt_count"`
	IdempotencyKey   string `dynamodbav:"idempotency_key"`
	ProcessorRef     string `dynamodbav:"processor_ref,omitempty"`
	FailureReason    string `dynamodbav:"failure_reason,omitempty"`
	CreatedAt        string `dynamodbav:"created_at"`
	UpdatedAt        string `dynamodbav:"updated_at"`
	Version          int64  `dynamodbav:"version"`
}

// PaymentDynamoRepository persists PaymentRecord entities in DynamoDB.
//
// Table requirements:
//   - payments: PK id (string), GSI job_id-index (PK: job_id)
//   - payment_keys: PK idempotency_key (string)
//
// Create writes the record and a guard row in payment_keys in one
// transaction; a duplicate idempotency key cancels the whole transaction,
// which surfaces as the conflict sentinel. Key lookups read the guard row
// first so they stay strongly consistent (a GSI would only be eventually
// consistent, which is not good enough for replay detection).

type PaymentDynamoRepository struct {
	ddb           *dynamodb.Client
	tableName     string
	keysTableName string
}

var _ interfaces.PaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:           ddb,
		tableName:     getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
		keysTableName: getenvDefault("PAYMENT_KEYS_TABLE", defaultPaymentKeysTableName),
	}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, record entities.PaymentRecord) (entities.PaymentRecord, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(record))
	if err != nil {
		return entities.PaymentRecord{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(r.tableName),
					Item:                av,
					ConditionExpression: aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{
						"#id": "id",
					},
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(r.keysTableName),
					Item: map[string]types.AttributeValue{
						"idempotency_key": &types.AttributeValueMemberS{Value: record.IdempotencyKey},
						"payment_id":      &types.AttributeValueMemberS{Value: record.ID},
					},
					ConditionExpression: aws.String("attribute_not_exists(#key)"),
					ExpressionAttributeNames: map[string]string{
						"#key": "idempotency_key",
					},
				},
			},
		},
	})
	if err != nil {
		return entities.PaymentRecord{}, conflictOr(err)
	}
	return record, nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.PaymentRecord, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if len(out.Item) == 0 {
		return entities.PaymentRecord{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.PaymentRecord{}, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) GetByIdempotencyKey(ctx context.Context, key string) (entities.PaymentRecord, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.keysTableName),
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.PaymentRecord{}, err
	}
	if len(out.Item) == 0 {
		return entities.PaymentRecord{}, nil
	}

	var guard struct {
		PaymentID string `dynamodbav:"payment_id"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &guard); err != nil {
		return entities.PaymentRecord{}, err
	}
	return r.GetByID(ctx, guard.PaymentID)
}

func (r *PaymentDynamoRepository) ListByJobID(ctx context.Context, jobID string) ([]entities.PaymentRecord, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentsJobIDIndex),
		KeyConditionExpression: aws.String("job_id = :jid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":jid": &types.AttributeValueMemberS{Value: jobID},
		},
	})
	if err != nil {
		return nil, err
	}

	records := make([]entities.PaymentRecord, 0, len(out.Items))
	for _, raw := range out.Items {
		var it paymentItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		records = append(records, fromPaymentItem(it))
	}
	return records, nil
}

func (r *PaymentDynamoRepository) Update(ctx context.Context, record entities.PaymentRecord, expectedVersion int64) (entities.PaymentRecord, error) {
	record.Version = expectedVersion + 1
	av, err := attributevalue.MarshalMap(toPaymentItem(record))
	if err != nil {
		return entities.PaymentRecord{}, err
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
		return entities.PaymentRecord{}, conflictOr(err)
	}
	return record, nil
}

func toPaymentItem(p entities.PaymentRecord) paymentItem {
	return paymentItem{
		ID:               p.ID,
		JobID:            p.JobID,
		ChangeOrderID:    p.ChangeOrderID,
		AmountCents:      p.AmountCents,
		PlatformFeeCents: p.PlatformFeeCents,
		PayeeCents:       p.PayeeCents,
		Method:           string(p.Method),
		Status:           string(p.Status),
		AttemptCount:     p.AttemptCount,
		IdempotencyKey:   p.IdempotencyKey,
		ProcessorRef:     p.ProcessorRef,
		FailureReason:    p.FailureReason,
		CreatedAt:        formatTime(p.CreatedAt),
		UpdatedAt:        formatTime(p.UpdatedAt),
		Version:          p.Version,
	}
}

func fromPaymentItem(it paymentItem) entities.PaymentRecord {
	return entities.PaymentRecord{
		ID:               it.ID,
		JobID:            it.JobID,
		ChangeOrderID:    it.ChangeOrderID,
		AmountCents:      it.AmountCents,
		PlatformFeeCents: it.PlatformFeeCents,
		PayeeCents:       it.PayeeCents,
		Method:           entities.PaymentMethod(it.Method),
		Status:           entities.PaymentStatus(it.Status),
		AttemptCount:     it.AttemptCount,
		IdempotencyKey:   it.IdempotencyKey,
		ProcessorRef:     it.ProcessorRef,
		FailureReason:    it.FailureReason,
		CreatedAt:        parseTime(it.CreatedAt),
		UpdatedAt:        parseTime(it.UpdatedAt),
		Version:          it.Version,
	}
}
