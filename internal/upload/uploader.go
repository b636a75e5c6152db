package upload

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"time"

	"gitwebsync/internal/aws_client_interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// Uploader represents the ability to archive a check report to remote storage
//
//counterfeiter:generate . Uploader
type Uploader interface {
	// UploadReport stores body under destinationKey in the remote file storage
	UploadReport(ctx context.Context, destinationKey string, body []byte, contentType string) error
}

type S3Uploader struct {
	s3         aws_client_interfaces.S3PutObjectAPI
	bucketName string
}

func NewUploader(s3 aws_client_interfaces.S3PutObjectAPI, bucketName string) Uploader {
	return S3Uploader{
		s3:         s3,
		bucketName: bucketName,
	}
}

func (u S3Uploader) UploadReport(ctx context.Context, destinationKey string, body []byte, contentType string) error {
	sum := sha1.Sum(body)
	checksum := base64.StdEncoding.EncodeToString(sum[:])

	_, err := u.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(u.bucketName),
		Key:               aws.String(destinationKey),
		Body:              bytes.NewReader(body),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha1,
		ChecksumSHA1:      aws.String(checksum),
		ContentType:       aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to write object %s: %w", destinationKey, err)
	}

	log.Info().Str("bucket", u.bucketName).Str("key", destinationKey).Msg("Uploaded sync report")
	return nil
}

// ReportKey is where the report of a check against slaveURL at checkedAt is
// archived: <prefix>/<slave host>/<unix seconds>.json
func ReportKey(prefix string, slaveURL string, checkedAt time.Time) string {
	host := slaveURL
	if u, err := url.Parse(slaveURL); err == nil && u.Host != "" {
		host = u.Host
	}

	return path.Join(prefix, host, fmt.Sprintf("%d.json", checkedAt.Unix()))
}
