// Package dynamo stores payment links in a DynamoDB single-table layout
// (PK = "LINK#<id>", SK = "LINK").
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/service/paylink"
)

const sortKey = "LINK"

// API is the subset of the DynamoDB client used by the repository.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// PaymentLinkRepo implements paylink.Repository against DynamoDB.
type PaymentLinkRepo struct {
	client API
	table  string
}

// NewPaymentLinkRepo creates a DynamoDB-backed payment link repository.
func NewPaymentLinkRepo(client API, table string) *PaymentLinkRepo {
	return &PaymentLinkRepo{client: client, table: table}
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

type linkItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	ID          string `dynamodbav:"ID"`
	RedirectURL string `dynamodbav:"RedirectURL"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

func partitionKey(id string) string {
	return "LINK#" + id
}

func (r *PaymentLinkRepo) Insert(ctx context.Context, link *domain.PaymentLink) error {
	av, err := attributevalue.MarshalMap(linkItem{
		PK:          partitionKey(link.ID),
		SK:          sortKey,
		ID:          link.ID,
		RedirectURL: link.RedirectURL,
		CreatedAt:   link.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshaling payment link: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return paylink.ErrDuplicateID
		}
		return fmt.Errorf("putting payment link to DynamoDB: %w", err)
	}
	return nil
}

func (r *PaymentLinkRepo) FindByID(ctx context.Context, id string) (*domain.PaymentLink, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionKey(id)},
			"SK": &types.AttributeValueMemberS{Value: sortKey},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting payment link from DynamoDB: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, paylink.ErrNotFound
	}

	var item linkItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling payment link: %w", err)
	}
	link := &domain.PaymentLink{ID: item.ID, RedirectURL: item.RedirectURL}
	if item.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, item.CreatedAt); err == nil {
			link.CreatedAt = ts
		}
	}
	return link, nil
}

func (r *PaymentLinkRepo) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}
