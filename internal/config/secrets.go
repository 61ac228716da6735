package config

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretPayload is the JSON document stored in AWS Secrets Manager.
type secretPayload struct {
	DatabasePassword string `json:"database_password"`
	DataAPIKey       string `json:"data_api_key"`
}

// LoadSecrets overlays sensitive values from AWS Secrets Manager onto the
// configuration. It is a no-op outside production or when secretName is
// empty, so local runs keep working from environment variables alone.
func (c *Config) LoadSecrets(ctx context.Context, secretName string) error {
	if !c.IsProduction() || secretName == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &secretName,
	})
	if err != nil {
		return fmt.Errorf("failed to retrieve secret %s: %w", secretName, err)
	}
	if out.SecretString == nil {
		return fmt.Errorf("secret %s has no string payload", secretName)
	}

	var payload secretPayload
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return fmt.Errorf("failed to parse secret %s: %w", secretName, err)
	}

	if payload.DatabasePassword != "" {
		c.Database.Password = payload.DatabasePassword
	}
	if payload.DataAPIKey != "" {
		c.Data.APIKey = payload.DataAPIKey
	}
	return nil
}
