package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/family-connect/internal/domain"
)

// The catalogue tables are written by the admin console and only read here.

// EventRepo reads the events table.
type EventRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEventRepo(client *dynamodb.Client, tableName string) *EventRepo {
	return &EventRepo{client: client, tableName: tableName}
}

func (r *EventRepo) ListEnabled(ctx context.Context) ([]domain.Event, error) {
	return scanEnabled[domain.Event](ctx, r.client, r.tableName)
}

// VideoRepo reads the videos table.
type VideoRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVideoRepo(client *dynamodb.Client, tableName string) *VideoRepo {
	return &VideoRepo{client: client, tableName: tableName}
}

func (r *VideoRepo) ListEnabled(ctx context.Context) ([]domain.Video, error) {
	return scanEnabled[domain.Video](ctx, r.client, r.tableName)
}

// AdRepo reads the ads table.
type AdRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAdRepo(client *dynamodb.Client, tableName string) *AdRepo {
	return &AdRepo{client: client, tableName: tableName}
}

func (r *AdRepo) ListEnabled(ctx context.Context) ([]domain.Advertisement, error) {
	return scanEnabled[domain.Advertisement](ctx, r.client, r.tableName)
}

// MenuRepo reads the menus table.
type MenuRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMenuRepo(client *dynamodb.Client, tableName string) *MenuRepo {
	return &MenuRepo{client: client, tableName: tableName}
}

func (r *MenuRepo) ListEnabled(ctx context.Context) ([]domain.Menu, error) {
	return scanEnabled[domain.Menu](ctx, r.client, r.tableName)
}
