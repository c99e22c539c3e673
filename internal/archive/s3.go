// Package archive persists conversation transcripts outside the live
// store, so deleting a conversation does not have to mean losing it.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/szaher/kontra/internal/conversation"
)

// putObjectAPI is the slice of the S3 client the archiver needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 writes one JSON transcript object per archived conversation under
// <prefix>/transcripts/<id>.json.
type S3 struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3 creates an archiver using the ambient AWS credential chain.
func NewS3(ctx context.Context, bucket, prefix string) (*S3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}
	return &S3{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// NewS3WithClient creates an archiver over an existing client.
func NewS3WithClient(client putObjectAPI, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// Archive implements debate.Archiver.
func (a *S3) Archive(ctx context.Context, c *conversation.Conversation) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("archive: encode transcript %s: %w", c.ID, err)
	}

	key := path.Join(a.prefix, "transcripts", c.ID+".json")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: put transcript %s: %w", c.ID, err)
	}
	return nil
}
