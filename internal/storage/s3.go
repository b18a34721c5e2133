// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides an S3-compatible object storage client for
// template assets and generated card images. It wraps the AWS SDK v2
// and is configured for path-style access (required by CEPH/Hetzner).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Client wraps an S3 client for operations on two buckets: assets
// (template backgrounds, custom images, student photos — publicly
// readable) and cards (generated card rasters — private, served via
// presigned URLs).
type Client struct {
	s3           *s3.Client
	presigner    *s3.PresignClient
	assetsBucket string
	cardsBucket  string
	endpoint     string
	publicURL    string // optional CDN/direct URL for asset files
}

// New creates an S3 storage client configured for CEPH/Hetzner with
// path-style addressing. Returns (nil, nil) if endpoint or credentials
// are empty, allowing the app to start without storage.
func New(endpoint, region, accessKey, secretKey, assetsBucket, cardsBucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")

	// Build S3 client with static credentials and path-style access.
	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:           s3Client,
		presigner:    s3.NewPresignClient(s3Client),
		assetsBucket: assetsBucket,
		cardsBucket:  cardsBucket,
		endpoint:     endpoint,
		publicURL:    strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload stores an object in the specified bucket. Assets bucket objects
// are set to public-read ACL so they can be served directly.
func (c *Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}

	if bucket == c.assetsBucket {
		input.ACL = s3types.ObjectCannedACLPublicRead
	}

	_, err := c.s3.PutObject(ctx, input)
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Download retrieves an object from the specified bucket and returns its
// contents as a byte slice.
func (c *Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	output, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download %s/%s: %w", bucket, key, err)
	}
	defer output.Body.Close()
	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Delete removes an object from the specified bucket.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// AssetURL returns the public URL for a file in the assets bucket.
// Uses the configured public URL if set, otherwise builds a path-style URL.
func (c *Client) AssetURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.assetsBucket + "/" + key
}

// PresignedURL generates a pre-signed GET URL for a private object in the
// cards bucket. The URL is valid for the specified duration (max 7 days
// per S3 spec).
func (c *Client) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cardsBucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", c.cardsBucket, key, err)
	}
	return req.URL, nil
}

// AssetsBucket returns the name of the assets bucket.
func (c *Client) AssetsBucket() string {
	return c.assetsBucket
}

// CardsBucket returns the name of the cards bucket.
func (c *Client) CardsBucket() string {
	return c.cardsBucket
}

// Bucket is a Client scoped to a single bucket. It carries the byte-slice
// oriented interface the compositor consumes.
type Bucket struct {
	c      *Client
	bucket string
}

// Assets returns the client scoped to the assets bucket.
func (c *Client) Assets() *Bucket {
	return &Bucket{c: c, bucket: c.assetsBucket}
}

// Cards returns the client scoped to the cards bucket.
func (c *Client) Cards() *Bucket {
	return &Bucket{c: c, bucket: c.cardsBucket}
}

// Download retrieves an object from the scoped bucket.
func (b *Bucket) Download(ctx context.Context, key string) ([]byte, error) {
	return b.c.Download(ctx, b.bucket, key)
}

// Upload stores an object in the scoped bucket.
func (b *Bucket) Upload(ctx context.Context, key, contentType string, data []byte) error {
	return b.c.Upload(ctx, b.bucket, key, contentType, bytes.NewReader(data), int64(len(data)))
}
