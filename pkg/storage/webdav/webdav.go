// Package webdav WebDAV 存储
package webdav

import (
	"context"
	"os"
	"path"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/storage/object"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Config WebDAV 连接信息
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

// WebDAV 客户端
type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

// NewClient 创建 WebDAV 客户端，连接在首次请求时建立
func NewClient(conf *Config) (*WebDAV, error) {
	if conf == nil || conf.Endpoint == "" {
		return nil, errors.New("webdav: endpoint is empty")
	}
	return &WebDAV{
		Client: gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password),
		Config: conf,
	}, nil
}

func (w *WebDAV) key(k string) string {
	return "/" + object.Join(w.Config.CustomPath, k)
}

// SendContent 上传内容，返回远端路径
func (w *WebDAV) SendContent(_ context.Context, key string, content []byte, _ time.Time) (string, error) {
	fileKey := w.key(key)
	if err := w.Client.MkdirAll(path.Dir(fileKey), 0o755); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	if err := w.Client.Write(fileKey, content, 0o644); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return fileKey, nil
}

func (w *WebDAV) Delete(_ context.Context, key string) error {
	err := w.Client.Remove(w.key(key))
	if err != nil && gowebdav.IsErrNotFound(err) {
		return nil
	}
	return errors.Wrap(err, "webdav")
}

func (w *WebDAV) List(_ context.Context, dir string) ([]object.Info, error) {
	files, err := w.Client.ReadDir(w.key(dir))
	if err != nil {
		if gowebdav.IsErrNotFound(err) || os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "webdav")
	}
	var out []object.Info
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		out = append(out, object.Info{
			Key:     object.Join(dir, f.Name()),
			Size:    f.Size(),
			ModTime: f.ModTime(),
		})
	}
	return out, nil
}
