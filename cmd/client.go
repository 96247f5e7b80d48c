package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/haierkeys/jot-sync-service/internal/client"
	"github.com/haierkeys/jot-sync-service/internal/service"
	"github.com/haierkeys/jot-sync-service/pkg/code"

	"github.com/spf13/cobra"
)

// profilePath path given by --profile
// profilePath 通过 --profile 指定的客户端配置文件
var profilePath string

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "client profile file (default $"+client.ProfileEnv+" or ~/.config/jot/profile.yaml)")
}

// resolveProfilePath returns the profile path from flag, env or default
// resolveProfilePath 依次使用 --profile、环境变量与默认路径
func resolveProfilePath() string {
	if profilePath != "" {
		return profilePath
	}
	return client.DefaultProfilePath()
}

func loadProfile() (*client.Profile, error) {
	return client.LoadProfile(resolveProfilePath())
}

// withLocal opens the local note store for the duration of fn
// withLocal 打开本地笔记库并在 fn 结束后关闭
func withLocal(cmd *cobra.Command, fn func(ctx context.Context, p *client.Profile, local *client.Local) error) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	local, err := client.OpenLocal(ctx, p.StorePath())
	if err != nil {
		return err
	}
	defer local.Close()
	return fn(ctx, p, local)
}

// userError turns store errors into short messages for the terminal
// userError 将存储层错误转换为面向终端用户的提示
func userError(err error) error {
	if err == nil {
		return nil
	}
	c := service.ErrorCode(err)
	if c.Code() == code.ServerError.Code() {
		return err
	}
	msg := c.Msg()
	if details := c.Details(); len(details) > 0 {
		msg += ": " + strings.Join(details, "; ")
	}
	return fmt.Errorf("%s", msg)
}

// readStdin reads piped input, empty when stdin is a terminal
// readStdin 读取管道输入，终端交互时返回空
func readStdin() (string, error) {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return "", nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\n"), nil
}
