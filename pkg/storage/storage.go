// Package storage 备份文件的存储后端
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/storage/aws_s3"
	"github.com/haierkeys/jot-sync-service/pkg/storage/local_fs"
	"github.com/haierkeys/jot-sync-service/pkg/storage/object"
	"github.com/haierkeys/jot-sync-service/pkg/storage/webdav"

	"github.com/pkg/errors"
)

type Type = string
type CloudType = Type

const R2 CloudType = "r2"
const S3 CloudType = "s3"
const LOCAL Type = "localfs"
const MinIO CloudType = "minio"
const WebDAV CloudType = "webdav"

var StorageTypeMap = map[Type]bool{
	R2:     true,
	S3:     true,
	LOCAL:  true,
	MinIO:  true,
	WebDAV: true,
}

// ErrInvalidStorageType 不支持的存储类型
var ErrInvalidStorageType = errors.New("invalid storage type")

// Object 存储中的对象
type Object = object.Info

// Config Unified storage configuration
// Config 统一的存储配置
type Config struct {
	Type       Type   `yaml:"type" default:"localfs"`
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/backup"`
}

// Storager storage backend used by backups
// Storager 备份使用的存储后端
type Storager interface {
	SendContent(ctx context.Context, key string, content []byte, modTime time.Time) (string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, dir string) ([]Object, error)
}

// NewClient creates the backend selected by config.Type
// NewClient 根据 Type 创建存储后端，s3/minio/r2 共用 aws-sdk-go-v2 客户端
func NewClient(ctx context.Context, config *Config) (Storager, error) {
	if config == nil {
		return nil, ErrInvalidStorageType
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case S3, MinIO, R2:
		cfg := &aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		switch config.Type {
		case MinIO:
			cfg.UsePathStyle = true
			if cfg.Region == "" {
				cfg.Region = "us-east-1"
			}
		case R2:
			cfg.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", config.AccountID)
			cfg.Region = "auto"
		}
		return aws_s3.NewClient(ctx, cfg)
	case WebDAV:
		return webdav.NewClient(&webdav.Config{
			Endpoint:   config.Endpoint,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		})
	}
	return nil, errors.Wrapf(ErrInvalidStorageType, "%q", config.Type)
}
