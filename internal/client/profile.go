// Package client 命令行客户端：本地笔记库、服务端 API 与同步
package client

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/haierkeys/jot-sync-service/pkg/fileurl"
	"github.com/haierkeys/jot-sync-service/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProfileEnv 指定客户端配置文件路径的环境变量
const ProfileEnv = "JOT_PROFILE"

// defaultStoreName 未配置 db-path 时本地笔记库的文件名，位于配置文件同级目录
const defaultStoreName = "notes.db"

// Profile 客户端配置
type Profile struct {
	File string `yaml:"-"`

	// DBPath 本地笔记库路径，为空时使用配置文件目录下的 notes.db
	DBPath string `yaml:"db-path"`
	// Server 同步服务地址
	Server string `yaml:"server" default:"http://127.0.0.1:9000"`
	// Token 登录后保存的认证 Token
	Token string `yaml:"token"`
	// Timeout 请求超时时间
	Timeout string `yaml:"timeout" default:"30s"`
}

// DefaultProfilePath 返回配置文件路径：JOT_PROFILE 优先，否则为 ~/.config/jot/profile.yaml
func DefaultProfilePath() string {
	if p := os.Getenv(ProfileEnv); p != "" {
		return p
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "jot", "profile.yaml")
	}
	return filepath.Join(".jot", "profile.yaml")
}

// NewProfile 创建带默认值的配置
func NewProfile(path string) (*Profile, error) {
	p := &Profile{File: expandHome(path)}
	if err := defaults.Set(p); err != nil {
		return nil, errors.Wrap(err, "set default profile failed")
	}
	return p, nil
}

// LoadProfile 读取配置文件，文件不存在时返回默认配置
func LoadProfile(path string) (*Profile, error) {
	p, err := NewProfile(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.File)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return nil, errors.Wrap(err, "read profile failed")
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "parse profile failed")
	}
	return p, nil
}

// Save 写回配置文件，Token 可能包含在内，权限为 0600
func (p *Profile) Save() error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal profile failed")
	}
	if err := fileurl.CreatePath(p.File, 0o700); err != nil {
		return errors.Wrap(err, "create profile dir failed")
	}
	if err := os.WriteFile(p.File, data, 0o600); err != nil {
		return errors.Wrap(err, "write profile failed")
	}
	return nil
}

// StorePath 返回本地笔记库的绝对路径
func (p *Profile) StorePath() string {
	if p.DBPath == "" {
		return filepath.Join(filepath.Dir(p.File), defaultStoreName)
	}
	path := expandHome(p.DBPath)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(p.File), path)
}

// RequestTimeout 解析请求超时时间，无法解析时为 30 秒
func (p *Profile) RequestTimeout() time.Duration {
	if d, err := util.ParseDuration(p.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
