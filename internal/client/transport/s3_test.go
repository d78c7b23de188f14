package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	opts []func(*s3.Options)
	body []byte
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.opts = optFns
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func newS3Test(p objectPutter) *S3Uploader {
	return &S3Uploader{
		cfg: S3Config{
			Region:     "eu-central-1",
			Bucket:     "images",
			PublicBase: "https://img.example/",
			Folder:     "svg-marketplace",
		},
		client: p,
		newKey: func() string { return "0f0f" },
	}
}

func TestS3Uploader_Success(t *testing.T) {
	fp := &fakePutter{}
	u := newS3Test(fp)

	progress := make(chan models.Progress, 128)
	res := u.Upload(context.Background(), models.NewCandidate("Shot.JPG", "image/jpeg", make([]byte, 4096)), progress)

	require.True(t, res.Success(), res.ErrorMessage())
	assert.Equal(t, "https://img.example/svg-marketplace/0f0f.jpg", res.URL)
	assert.Equal(t, "svg-marketplace/0f0f.jpg", res.PublicID)
	assert.Equal(t, "images", *fp.in.Bucket)
	assert.Equal(t, "image/jpeg", *fp.in.ContentType)
	assert.EqualValues(t, 4096, *fp.in.ContentLength)
	assert.Len(t, fp.body, 4096)

	close(progress)
	last := -1
	for p := range progress {
		assert.Greater(t, p.Percentage, last)
		last = p.Percentage
	}
	assert.Equal(t, 100, last)
}

func TestS3Uploader_Errors(t *testing.T) {
	respErr := &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusForbidden}},
			Err:      &smithy.GenericAPIError{Code: "AccessDenied"},
		},
	}

	tests := []struct {
		name   string
		err    error
		reason models.FailureReason
		msg    string
	}{
		{"status", &smithy.OperationError{ServiceID: "S3", OperationName: "PutObject", Err: respErr}, models.ReasonStatus, "Upload failed with status 403"},
		{"network", errors.New("dial tcp: connection refused"), models.ReasonNetwork, MsgNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newS3Test(&fakePutter{err: tt.err})
			res := u.Upload(context.Background(), models.NewCandidate("a.png", "image/png", []byte("x")), nil)
			require.False(t, res.Success())
			assert.Equal(t, tt.reason, res.Err.Reason)
			assert.Equal(t, tt.msg, res.Err.Message)
		})
	}
}

func TestS3Uploader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u := newS3Test(&fakePutter{err: context.Canceled})

	res := u.Upload(ctx, models.NewCandidate("a.png", "image/png", []byte("x")), nil)
	require.False(t, res.Success())
	assert.Equal(t, models.ReasonCancelled, res.Err.Reason)
}

func TestS3Uploader_NotConfigured(t *testing.T) {
	u, err := NewS3Uploader(context.Background(), S3Config{Bucket: "b"})
	require.NoError(t, err)

	res := u.Upload(context.Background(), models.NewCandidate("a.png", "image/png", []byte("x")), nil)
	require.False(t, res.Success())
	assert.Equal(t, models.ReasonConfiguration, res.Err.Reason)
	assert.Equal(t, MsgS3NotConfigured, res.Err.Message)
}

func TestS3Uploader_ValidationBeforePut(t *testing.T) {
	fp := &fakePutter{}
	u := newS3Test(fp)

	res := u.Upload(context.Background(), models.NewCandidate("a.png", "image/png", nil), nil)
	require.False(t, res.Success())
	assert.Equal(t, models.ReasonValidation, res.Err.Reason)
	assert.Nil(t, fp.in)
}

func TestNewS3Uploader_BuildsClient(t *testing.T) {
	u, err := NewS3Uploader(context.Background(), S3Config{
		Region:     "us-east-1",
		Bucket:     "b",
		AccessKey:  "ak",
		SecretKey:  "sk",
		Endpoint:   "http://localhost:9000",
		PublicBase: "http://localhost:9000/b",
	})
	require.NoError(t, err)
	require.IsType(t, &s3.Client{}, u.client)
	assert.Equal(t, aws.RequestChecksumCalculationWhenRequired, u.client.(*s3.Client).Options().RequestChecksumCalculation)
	assert.Equal(t, "svg-marketplace", u.cfg.Folder)
}

func TestS3Upload_BodyIsNotHashedBeforeSending(t *testing.T) {
	fp := &fakePutter{}
	u := newS3Test(fp)

	res := u.Upload(context.Background(), models.NewCandidate("a.png", "image/png", make([]byte, 64)), nil)
	require.True(t, res.Success(), res.ErrorMessage())

	var o s3.Options
	for _, fn := range fp.opts {
		fn(&o)
	}
	assert.Len(t, o.APIOptions, 1, "PutObject swaps payload hashing for an unsigned payload")
}
