// Package remote resolves run history from S3-compatible storage. It is a
// read-only fallback for machines with no local run history; nothing in the
// pipeline ever writes to the bucket.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/jonathan/job-radar/internal/types"
)

// Config selects the bucket holding published run state. Region and Profile
// fall back to the standard AWS config/credential chain when empty.
type Config struct {
	Bucket       string `mapstructure:"bucket" validate:"required"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Profile      string `mapstructure:"profile"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// objectGetter is the slice of the S3 client the store needs, narrow so
// tests can fake it.
type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store reads success pointers and identity maps from a bucket laid out the
// same way as the local state root: pointers under pointers/, run artifacts
// under runs/<run>/.
type Store struct {
	client objectGetter
	bucket string
	prefix string
}

// NewStore builds a Store from the default AWS configuration chain with
// optional overrides from cfg.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// LatestSuccess resolves the remote success pointer for profile, falling
// back to the global pointer, and fetches that run's identity map. A missing
// pointer or map means no remote history exists and is not an error to the
// caller; transport failures are.
func (s *Store) LatestSuccess(ctx context.Context, profile string) (string, *types.IdentityMap, error) {
	keys := []string{}
	if profile != "" {
		keys = append(keys, s.key("pointers", "LATEST_SUCCESS_"+profile))
	}
	keys = append(keys, s.key("pointers", "LATEST_SUCCESS"))

	var runName string
	for _, key := range keys {
		data, err := s.get(ctx, key)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return "", nil, fmt.Errorf("reading remote pointer %s: %w", key, err)
		}
		runName = strings.TrimSpace(string(data))
		if runName != "" {
			break
		}
	}
	if runName == "" {
		return "", nil, errors.New("no remote success pointer")
	}

	data, err := s.get(ctx, s.key("runs", runName, "identity_map.json"))
	if err != nil {
		return "", nil, fmt.Errorf("reading remote identity map for %s: %w", runName, err)
	}
	var m types.IdentityMap
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, fmt.Errorf("decoding remote identity map for %s: %w", runName, err)
	}
	return runName, &m, nil
}

func (s *Store) key(parts ...string) string {
	if s.prefix != "" {
		parts = append([]string{s.prefix}, parts...)
	}
	return path.Join(parts...)
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func isNotFound(err error) bool {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
