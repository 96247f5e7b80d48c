// Package aws_s3 S3 兼容对象存储（AWS S3、MinIO、Cloudflare R2）
package aws_s3

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/storage/object"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	CustomPath      string `yaml:"custom-path"`
	// UsePathStyle MinIO 等自建服务需要路径风格寻址
	UsePathStyle bool `yaml:"use-path-style"`
}

type S3 struct {
	Client *s3.Client
	Config *Config
}

// NewClient 创建 S3 客户端，配置了 Endpoint 时指向自定义服务
func NewClient(ctx context.Context, conf *Config) (*S3, error) {
	if conf == nil || conf.BucketName == "" {
		return nil, errors.New("aws_s3: bucket name is empty")
	}
	region := conf.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
		o.UsePathStyle = conf.UsePathStyle
	})
	return &S3{Client: client, Config: conf}, nil
}

func (p *S3) key(k string) string {
	return object.Join(p.Config.CustomPath, k)
}

// SendContent 上传内容，返回对象键
func (p *S3) SendContent(ctx context.Context, key string, content []byte, _ time.Time) (string, error) {
	fileKey := p.key(key)
	_, err := p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Config.BucketName),
		Key:           aws.String(fileKey),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}
	return fileKey, nil
}

func (p *S3) Delete(ctx context.Context, key string) error {
	_, err := p.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.key(key)),
	})
	return errors.Wrap(err, "aws_s3")
}

func (p *S3) List(ctx context.Context, dir string) ([]object.Info, error) {
	prefix := strings.TrimSuffix(p.key(dir), "/") + "/"
	paginator := s3.NewListObjectsV2Paginator(p.Client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(p.Config.BucketName),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var out []object.Info
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "aws_s3")
		}
		for _, obj := range page.Contents {
			info := object.Info{Key: object.Rel(p.Config.CustomPath, aws.ToString(obj.Key))}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.ModTime = *obj.LastModified
			}
			out = append(out, info)
		}
	}
	return out, nil
}
