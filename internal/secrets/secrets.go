// Package secrets resolves database credentials stored in AWS Secrets Manager.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
)

const (
	defaultPort   = "5432"
	defaultDBName = "postgres"
)

// ErrIncompleteSecret is returned when a secret lacks a required field.
var ErrIncompleteSecret = errors.New("incomplete database secret")

// rdsSecret is the JSON layout RDS writes for managed credentials.
type rdsSecret struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Host     string      `json:"host"`
	Port     json.Number `json:"port"`
	DBName   string      `json:"dbname"`
}

// NewClient creates a Secrets Manager client from the default credential chain.
func NewClient(region string) (*secretsmanager.SecretsManager, error) {
	cfg := aws.NewConfig().WithMaxRetries(client.DefaultRetryerMaxNumRetries)
	if region != "" {
		cfg = cfg.WithRegion(region)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}
	return secretsmanager.New(sess), nil
}

// ResolveDatabaseURL returns databaseURL when set, otherwise the URL built
// from secretID.
func ResolveDatabaseURL(ctx context.Context, databaseURL, secretID, region string) (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if secretID == "" {
		return "", errors.New("no database URL or secret id configured")
	}

	api, err := NewClient(region)
	if err != nil {
		return "", err
	}
	return DatabaseURL(ctx, api, secretID)
}

// DatabaseURL fetches secretID and returns a postgres:// connection URL.
// Port defaults to 5432 and dbname to postgres.
func DatabaseURL(ctx context.Context, api secretsmanageriface.SecretsManagerAPI, secretID string) (string, error) {
	out, err := api.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", secretID, err)
	}

	raw := aws.StringValue(out.SecretString)
	if raw == "" {
		return "", fmt.Errorf("%w: secret %s has no string value", ErrIncompleteSecret, secretID)
	}

	var s rdsSecret
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return "", fmt.Errorf("decode secret %s: %w", secretID, err)
	}
	return s.url(secretID)
}

func (s rdsSecret) url(secretID string) (string, error) {
	var missing []string
	if s.Username == "" {
		missing = append(missing, "username")
	}
	if s.Password == "" {
		missing = append(missing, "password")
	}
	if s.Host == "" {
		missing = append(missing, "host")
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: secret %s missing %v", ErrIncompleteSecret, secretID, missing)
	}

	port := s.Port.String()
	if port == "" {
		port = defaultPort
	}
	dbName := s.DBName
	if dbName == "" {
		dbName = defaultDBName
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.Username, s.Password),
		Host:   net.JoinHostPort(s.Host, port),
		Path:   "/" + dbName,
	}
	return u.String(), nil
}
