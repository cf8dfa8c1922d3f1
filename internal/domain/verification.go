package domain

// Verification types stored in the user_verifications table.
const (
	VerificationOTP    = "otp"
	VerificationTicket = "ticket"
)

// UserVerification stores pending OTPs and login tickets.
// PK: subject (phone for OTPs, the ticket itself for tickets), SK: type.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type UserVerification struct {
	Subject   string `json:"subject" dynamodbav:"subject"`
	Type      string `json:"type" dynamodbav:"type"`
	CodeHash  string `json:"-" dynamodbav:"code_hash"`
	UserID    string `json:"user_id,omitempty" dynamodbav:"user_id"`
	Attempts  int    `json:"attempts" dynamodbav:"attempts"`
	SentAt    int64  `json:"sent_at" dynamodbav:"sent_at"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`
}
