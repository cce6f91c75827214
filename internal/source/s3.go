package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/JonMunkholm/cusip/internal/config"
	"github.com/JonMunkholm/cusip/internal/core"
)

// S3 finds PIP files under a key prefix in one bucket.
type S3 struct {
	client     s3iface.S3API
	bucket     string
	keyPrefix  string
	namePrefix string
}

// NewS3 creates an S3 source with a session built from the default
// credential chain. AWS_PROFILE and SSO profiles in ~/.aws/config apply.
func NewS3(cfg config.SourceConfig, awsRegion string) (*S3, error) {
	awsCfg := aws.NewConfig().
		// retry on ephemeral AWS errors
		WithMaxRetries(client.DefaultRetryerMaxNumRetries)

	region := cfg.S3Region
	if region == "" {
		region = awsRegion
	}
	if region != "" {
		awsCfg = awsCfg.WithRegion(region)
	}
	if cfg.S3Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.S3Endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating AWS session: %v", core.ErrSourceUnavailable, err)
	}

	return NewS3WithClient(s3.New(sess), cfg.S3Bucket, cfg.S3Prefix, cfg.Prefix), nil
}

// NewS3WithClient creates an S3 source over an existing client.
// keyPrefix is normalized to end in exactly one "/" unless empty.
func NewS3WithClient(api s3iface.S3API, bucket, keyPrefix, namePrefix string) *S3 {
	if namePrefix == "" {
		namePrefix = DefaultPrefix
	}
	return &S3{
		client:     api,
		bucket:     bucket,
		keyPrefix:  NormalizePrefix(keyPrefix),
		namePrefix: namePrefix,
	}
}

// NormalizePrefix trims trailing slashes and appends one.
func NormalizePrefix(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// Bucket returns the configured bucket.
func (s *S3) Bucket() string {
	return s.bucket
}

// KeyPrefix returns the normalized key prefix.
func (s *S3) KeyPrefix() string {
	return s.keyPrefix
}

// FindFilesForDate lists keys under <keyPrefix><PREFIX><MM>-<DD> across all
// pages and classifies the .PIP objects. Keys nested below the date prefix,
// such as pip/CED01-15/xR.PIP, are candidates too; the kind comes from the
// key's base name.
func (s *S3) FindFilesForDate(ctx context.Context, date time.Time) (core.FileSet, error) {
	search := s.keyPrefix + s.namePrefix + date.Format("01-02")
	pattern := datePattern(s.namePrefix, date)

	var candidates []core.FileLocation
	err := s.client.ListObjectsV2PagesWithContext(ctx,
		&s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(search),
		},
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, obj := range page.Contents {
				key := aws.StringValue(obj.Key)
				if strings.HasSuffix(key, "/") || !matchesDate(strings.TrimPrefix(key, s.keyPrefix), pattern) {
					continue
				}
				candidates = append(candidates, S3Object(s.bucket, key))
			}
			return true
		})
	if err != nil {
		return core.FileSet{}, fmt.Errorf("%w: list s3://%s/%s: %v", core.ErrSourceUnavailable, s.bucket, search, err)
	}

	return classify(date, candidates)
}

// ReadFile downloads and decodes the object at loc.
func (s *S3) ReadFile(ctx context.Context, loc core.FileLocation) ([]string, error) {
	if loc.Bucket == "" || loc.Key == "" {
		return nil, fmt.Errorf("no S3 location for file %q", loc.Name)
	}

	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", core.ErrSourceUnavailable, loc.DisplayPath(), err)
	}
	defer out.Body.Close()

	lines, err := decodeLines(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrSourceUnavailable, loc.DisplayPath(), err)
	}
	return lines, nil
}
