package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/family-connect/internal/domain"
)

// VerificationRepo manages OTPs and login tickets.
// PK: subject, SK: type ("otp" | "ticket")
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.UserVerification) error {
	return putItem(ctx, r.client, r.tableName, "verification", v)
}

func (r *VerificationRepo) Get(ctx context.Context, subject, verType string) (*domain.UserVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            compositeKey("subject", subject, "type", verType),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	var v domain.UserVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// IncrementAttempts records one guess against the verification and returns
// the new count. With limit > 0 the write is refused once limit guesses were
// made, so concurrent guesses cannot overshoot the limit.
func (r *VerificationRepo) IncrementAttempts(ctx context.Context, subject, verType string, limit int) (int, error) {
	out, err := r.client.UpdateItem(ctx, r.incrementAttemptsInput(subject, verType, limit))
	if err != nil {
		return 0, conditionErr(err, domain.ErrTooManyRequests)
	}
	var v struct {
		Attempts int `dynamodbav:"attempts"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return 0, err
	}
	return v.Attempts, nil
}

func (r *VerificationRepo) incrementAttemptsInput(subject, verType string, limit int) *dynamodb.UpdateItemInput {
	cond := "attribute_exists(#s)"
	values := map[string]types.AttributeValue{
		":one": &types.AttributeValueMemberN{Value: "1"},
	}
	if limit > 0 {
		cond += " AND (attribute_not_exists(#a) OR #a < :max)"
		values[":max"] = &types.AttributeValueMemberN{Value: strconv.Itoa(limit)}
	}
	return &dynamodb.UpdateItemInput{
		TableName:                           aws.String(r.tableName),
		Key:                                 compositeKey("subject", subject, "type", verType),
		UpdateExpression:                    aws.String("ADD #a :one"),
		ConditionExpression:                 aws.String(cond),
		ExpressionAttributeNames:            map[string]string{"#a": fieldAttempts, "#s": "subject"},
		ExpressionAttributeValues:           values,
		ReturnValues:                        types.ReturnValueUpdatedNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}
}

// Consume deletes the verification and returns it. Only one of several
// concurrent callers gets the record; the others see ErrNotFound.
func (r *VerificationRepo) Consume(ctx context.Context, subject, verType string) (*domain.UserVerification, error) {
	out, err := r.client.DeleteItem(ctx, r.consumeInput(subject, verType))
	if err != nil {
		return nil, conditionErr(err, domain.ErrNotFound)
	}
	var v domain.UserVerification
	if err := attributevalue.UnmarshalMap(out.Attributes, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepo) consumeInput(subject, verType string) *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      compositeKey("subject", subject, "type", verType),
		ConditionExpression:      aws.String("attribute_exists(#s)"),
		ExpressionAttributeNames: map[string]string{"#s": "subject"},
		ReturnValues:             types.ReturnValueAllOld,
	}
}

func (r *VerificationRepo) Delete(ctx context.Context, subject, verType string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("subject", subject, "type", verType),
	})
	return err
}

// conditionErr maps a failed condition to ErrNotFound when the item is gone
// and to exists otherwise. Other errors pass through.
func conditionErr(err error, exists error) error {
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return err
	}
	if ccf.Item == nil {
		return fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	return fmt.Errorf("verification rejected: %w", exists)
}
