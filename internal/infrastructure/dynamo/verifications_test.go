package dynamo

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/family-connect/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestVerificationRepo_ConsumeInput_IsConditional(t *testing.T) {
	r := NewVerificationRepo(nil, "user_verifications")
	in := r.consumeInput("tkt", domain.VerificationTicket)

	assert.Equal(t, "attribute_exists(#s)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, "subject", in.ExpressionAttributeNames["#s"])
	assert.Equal(t, types.ReturnValueAllOld, in.ReturnValues)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "tkt"}, in.Key["subject"])
}

func TestVerificationRepo_IncrementAttemptsInput_CapsGuesses(t *testing.T) {
	r := NewVerificationRepo(nil, "user_verifications")

	in := r.incrementAttemptsInput("+919876543210", domain.VerificationOTP, 5)
	assert.Equal(t, "attribute_exists(#s) AND (attribute_not_exists(#a) OR #a < :max)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "5"}, in.ExpressionAttributeValues[":max"])
	assert.Equal(t, types.ReturnValueUpdatedNew, in.ReturnValues)

	unlimited := r.incrementAttemptsInput("+919876543210", domain.VerificationOTP, 0)
	assert.Equal(t, "attribute_exists(#s)", aws.ToString(unlimited.ConditionExpression))
	assert.NotContains(t, unlimited.ExpressionAttributeValues, ":max")
}

func TestConditionErr(t *testing.T) {
	gone := &types.ConditionalCheckFailedException{}
	assert.True(t, errors.Is(conditionErr(gone, domain.ErrTooManyRequests), domain.ErrNotFound))

	capped := &types.ConditionalCheckFailedException{Item: map[string]types.AttributeValue{
		"attempts": &types.AttributeValueMemberN{Value: "5"},
	}}
	assert.True(t, errors.Is(conditionErr(capped, domain.ErrTooManyRequests), domain.ErrTooManyRequests))

	other := errors.New("throttled")
	assert.Same(t, other, conditionErr(other, domain.ErrTooManyRequests))
}
