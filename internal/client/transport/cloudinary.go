package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophmarket/internal/client/models"
	"github.com/dmitrijs2005/gophmarket/internal/common"
	"github.com/dmitrijs2005/gophmarket/internal/netx"
)

// DefaultCloudinaryBaseURL is the public upload API root.
const DefaultCloudinaryBaseURL = "https://api.cloudinary.com/v1_1"

// CloudinaryConfig describes an unsigned upload destination.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	Folder       string
	// BaseURL overrides DefaultCloudinaryBaseURL.
	BaseURL string
	// Timeout bounds one request; zero means no limit beyond ctx.
	Timeout time.Duration
}

// CloudinaryUploader posts candidates as multipart forms to the image
// upload endpoint of a cloud.
type CloudinaryUploader struct {
	cfg    CloudinaryConfig
	client *http.Client
}

// NewCloudinaryUploader builds an uploader. A nil client uses a fresh
// http.Client honouring cfg.Timeout.
func NewCloudinaryUploader(cfg CloudinaryConfig, client *http.Client) *CloudinaryUploader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCloudinaryBaseURL
	}
	if cfg.Folder == "" {
		cfg.Folder = common.DefaultUploadFolder
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &CloudinaryUploader{cfg: cfg, client: client}
}

// Configured reports whether both cloud name and upload preset are set.
func (u *CloudinaryUploader) Configured() bool {
	return u.cfg.CloudName != "" && u.cfg.UploadPreset != ""
}

// Endpoint is the URL uploads are posted to.
func (u *CloudinaryUploader) Endpoint() string {
	return fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(u.cfg.BaseURL, "/"), u.cfg.CloudName)
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

func (u *CloudinaryUploader) Upload(ctx context.Context, c models.Candidate, progress chan<- models.Progress) models.UploadResult {
	if !u.Configured() {
		return models.Failed(models.ReasonConfiguration, MsgNotConfigured)
	}
	if res, ok := revalidate(c); !ok {
		return res
	}

	body, contentType, err := netx.BuildMultipart(
		netx.FormFile{Field: "file", FileName: c.Name, ContentType: c.MediaType, Data: c.Data},
		netx.Field{Name: "upload_preset", Value: u.cfg.UploadPreset},
		netx.Field{Name: "folder", Value: u.cfg.Folder},
	)
	if err != nil {
		return models.Failed(models.ReasonNetwork, MsgNetwork)
	}

	emitter := netx.NewEmitter(ctx, progress)
	defer emitter.Close()
	reader := netx.NewProgressReader(body, emitter.Emit)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint(), reader)
	if err != nil {
		return models.Failed(models.ReasonNetwork, MsgNetwork)
	}
	req.ContentLength = reader.Size()
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.FailedStatus(resp.StatusCode, fmt.Sprintf(MsgStatusFormat, resp.StatusCode))
	}

	var parsed cloudinaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		if ctx.Err() != nil {
			return models.Failed(models.ReasonCancelled, MsgCancelled)
		}
		return models.Failed(models.ReasonMalformedResponse, MsgMalformedResponse)
	}

	res := models.Succeeded(parsed.SecureURL, parsed.PublicID)
	if res.Success() {
		emitter.Complete(reader.Size())
	}
	return res
}
