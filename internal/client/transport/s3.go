package transport

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/netx"
	"github.com/google/uuid"
)

// S3Config describes an S3 compatible bucket that serves uploaded images
// from PublicBase.
type S3Config struct {
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	PublicBase string
	Folder     string
}

func (c S3Config) complete() bool {
	return c.Region != "" && c.Bucket != "" && c.PublicBase != ""
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// sendOnce signs PutObject with an unsigned payload. Hashing the body would
// read it to the end before the request is sent and report false progress.
func sendOnce(o *s3.Options) {
	o.APIOptions = append(o.APIOptions, v4.SwapComputePayloadSHA256ForUnsignedPayloadMiddleware)
}

// S3Uploader stores candidates with PutObject under <folder>/<uuid><ext>.
type S3Uploader struct {
	cfg    S3Config
	client objectPutter
	newKey func() string
}

// NewS3Uploader builds an uploader. With incomplete settings no client is
// created and every upload resolves to a configuration failure.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Folder == "" {
		cfg.Folder = common.DefaultUploadFolder
	}
	u := &S3Uploader{cfg: cfg, newKey: uuid.NewString}
	if !cfg.complete() {
		return u, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	u.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return u, nil
}

// ObjectKey returns the key a candidate named name is stored under.
func (u *S3Uploader) ObjectKey(name string) string {
	return path.Join(u.cfg.Folder, u.newKey()+strings.ToLower(filepath.Ext(name)))
}

// FileURL maps an object key to its public URL.
func (u *S3Uploader) FileURL(key string) string {
	return strings.TrimRight(u.cfg.PublicBase, "/") + "/" + key
}

func (u *S3Uploader) Upload(ctx context.Context, c models.Candidate, progress chan<- models.Progress) models.UploadResult {
	if u.client == nil || !u.cfg.complete() {
		return models.Failed(models.ReasonConfiguration, MsgS3NotConfigured)
	}
	if res, ok := revalidate(c); !ok {
		return res
	}

	emitter := netx.NewEmitter(ctx, progress)
	defer emitter.Close()
	reader := netx.NewProgressReader(c.Data, emitter.Emit)

	key := u.ObjectKey(c.Name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(reader.Size()),
		ContentType:   aws.String(c.MediaType),
	}, sendOnce)
	if err != nil {
		var respErr *awshttp.ResponseError
		if ctx.Err() == nil && errors.As(err, &respErr) {
			code := respErr.HTTPStatusCode()
			return models.FailedStatus(code, fmt.Sprintf(MsgStatusFormat, code))
		}
		return transportFailure(ctx, err)
	}

	emitter.Complete(reader.Size())
	return models.Succeeded(u.FileURL(key), key)
}
