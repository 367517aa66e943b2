package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"github.com/hargunmujral/3brown1blue/application/ports/outbound"
	"github.com/hargunmujral/3brown1blue/config"
	"github.com/hargunmujral/3brown1blue/domain"
)

type dynamoSceneItem struct {
	VideoId  string  `dynamodbav:"video_id"`
	SceneId  string  `dynamodbav:"scene_id"`
	Status   string  `dynamodbav:"status"`
	Attempts int     `dynamodbav:"attempts"`
	Duration float64 `dynamodbav:"duration"`
	TTL      int64   `dynamodbav:"ttl"`
}

type dynamoSceneStore struct {
	logger       outbound.LoggerPort
	dynamoSvc    *dynamodb.DynamoDB
	dynamoConfig *config.DynamoConfig
}

func NewDynamoSceneStore(logger outbound.LoggerPort, dynamoSvc *dynamodb.DynamoDB, dynamoConfig *config.DynamoConfig) outbound.SceneStorePort {
	return &dynamoSceneStore{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (c *dynamoSceneStore) Save(ctx context.Context, record domain.SceneRecord) error {
	item := dynamoSceneItem{
		VideoId:  record.VideoID,
		SceneId:  record.SceneID,
		Status:   string(record.Status),
		Attempts: record.Attempts,
		Duration: record.Duration,
		TTL:      time.Now().Add(time.Duration(c.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to marshal scene item", map[string]interface{}{
			"item": item,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(c.dynamoConfig.TableName),
	}

	_, err = c.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to save scene item", map[string]interface{}{
			"item": item,
		})
		return err
	}

	return nil
}
