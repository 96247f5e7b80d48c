// Package local_fs 本地目录存储
package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/fileurl"
	"github.com/haierkeys/jot-sync-service/pkg/storage/object"

	"github.com/pkg/errors"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/backup"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

// NewClient 创建本地存储，SavePath 不能为空
func NewClient(conf *Config) (*LocalFS, error) {
	if conf == nil || conf.SavePath == "" {
		return nil, errors.New("local_fs: save path is empty")
	}
	return &LocalFS{Config: conf}, nil
}

func (p *LocalFS) path(key string) string {
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(object.Join(p.Config.CustomPath, key)))
}

// SendContent 写入文件并设置修改时间，返回文件路径
func (p *LocalFS) SendContent(_ context.Context, key string, content []byte, modTime time.Time) (string, error) {
	dst := p.path(key)
	if err := fileurl.CreatePath(dst, 0o755); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.WriteFile(dst, content, 0o644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(dst, modTime, modTime); err != nil {
			return "", errors.Wrap(err, "local_fs")
		}
	}
	return dst, nil
}

func (p *LocalFS) Delete(_ context.Context, key string) error {
	dst := p.path(key)
	if !fileurl.IsExist(dst) {
		return nil
	}
	return errors.Wrap(os.Remove(dst), "local_fs")
}

func (p *LocalFS) List(_ context.Context, dir string) ([]object.Info, error) {
	entries, err := os.ReadDir(p.path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "local_fs")
	}

	var out []object.Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, object.Info{
			Key:     object.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}
