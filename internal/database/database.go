package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"legal-relay-backend/internal/env"
)

type DynamoDBClient struct {
	svc *dynamodb.Client
}

// Options selects the AWS region, static credentials and an optional
// endpoint override (DynamoDB Local).
type Options struct {
	Region    string
	AccessKey string
	SecretKey string
	Session   string
	Endpoint  string
}

// OptionsFromEnv reads the AWS settings from the process environment.
func OptionsFromEnv() Options {
	return Options{
		Region:    env.Get(env.AWSRegion),
		AccessKey: env.Get(env.AWSID),
		SecretKey: env.Get(env.AWSSecret),
		Session:   env.Get(env.AWSToken),
		Endpoint:  env.Get(env.DynamoDBEndpoint),
	}
}

func NewDynamoDBClient(ctx context.Context, opts Options) (*DynamoDBClient, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}

	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, opts.Session)),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	clientOpts := []func(*dynamodb.Options){}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		})
	}

	return &DynamoDBClient{
		svc: dynamodb.NewFromConfig(cfg, clientOpts...),
	}, nil
}
