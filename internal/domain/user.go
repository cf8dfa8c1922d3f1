package domain

import "time"

const RoleUser = "user"

// DateLayout is the wire and storage format for birthdays and anniversaries.
const DateLayout = "2006-01-02"

type User struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	Phone       string    `json:"phone" dynamodbav:"phone"`
	Name        string    `json:"name" dynamodbav:"name"`
	Email       string    `json:"email" dynamodbav:"email"`
	City        string    `json:"city" dynamodbav:"city"`
	Birthday    string    `json:"birthday" dynamodbav:"birthday"`       // YYYY-MM-DD or empty
	Anniversary string    `json:"anniversary" dynamodbav:"anniversary"` // YYYY-MM-DD or empty
	PhotoKey    string    `json:"-" dynamodbav:"photo_key"`
	PhotoURL    string    `json:"photo_url,omitempty" dynamodbav:"-"`
	Registered  bool      `json:"registered" dynamodbav:"registered"`
	Role        string    `json:"role" dynamodbav:"role"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// UpdateProfileRequest carries the optional profile fields; nil means unchanged.
type UpdateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=60"`
	Email       *string `json:"email" validate:"omitempty,email"`
	City        *string `json:"city" validate:"omitempty,max=80"`
	Birthday    *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Anniversary *string `json:"anniversary" validate:"omitempty,datetime=2006-01-02"`
}
