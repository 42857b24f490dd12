package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/retouchshop/shopapi/config"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultExt = "jpg"

// Uploader forwards files to the storage API and resolves their CDN URL.
type Uploader struct {
	uploadURL string
	cdnBase   string
	projectId string
}

func NewUploader(cfg config.StorageConfig) *Uploader {
	return &Uploader{
		uploadURL: cfg.UploadURL,
		cdnBase:   strings.TrimRight(cfg.CdnBase, "/"),
		projectId: cfg.ProjectId,
	}
}

// DefaultFilename is used when the client sends no name.
func DefaultFilename() string {
	return uuid.NewString() + "." + defaultExt
}

// DecodePayload strips an optional data-URI prefix ("data:image/png;base64,")
// and decodes the base64 content.
func DecodePayload(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, errors.Wrap(err, "decode file data")
	}
	return data, nil
}

// Extension returns the text after the last dot of filename, or jpg.
func Extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return defaultExt
	}
	return filename[i+1:]
}

// CdnURL builds the public URL a file id is served from.
func (u *Uploader) CdnURL(fileId, ext string) string {
	return fmt.Sprintf("%s/projects/%s/files/%s.%s", u.cdnBase, u.projectId, fileId, ext)
}

type uploadReply struct {
	URL string `json:"url"`
}

// Upload sends data as a single multipart "file" part and returns the URL the
// storage API reports, or the locally built CDN URL when it reports none.
func (u *Uploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	ext := Extension(filename)

	var (
		raw  []byte
		code int
	)
	err := gout.POST(u.uploadURL).
		WithContext(ctx).
		SetForm(gout.H{
			"file": gout.FormType{
				FileName:    filename,
				ContentType: "image/" + ext,
				File:        gout.FormMem(data),
			},
		}).
		BindBody(&raw).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "upload request")
	}
	if code < 200 || code >= 300 {
		return "", errors.Errorf("upload failed: HTTP Error %d", code)
	}

	var reply uploadReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", errors.Wrap(err, "malformed upload response")
	}
	if reply.URL == "" {
		reply.URL = u.CdnURL(uuid.NewString(), ext)
	}

	zap.L().Info("file uploaded",
		zap.String("filename", filename),
		zap.Int("size", len(data)),
		zap.String("url", reply.URL),
	)
	return reply.URL, nil
}
