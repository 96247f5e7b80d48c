package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/haierkeys/jot-sync-service/internal/client"
	"github.com/haierkeys/jot-sync-service/pkg/fileurl"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a client profile and local note store",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveProfilePath()
		if fileurl.IsExist(path) && !initForce {
			return fmt.Errorf("profile %s already exists, use --force to overwrite", path)
		}
		p, err := client.NewProfile(path)
		if err != nil {
			return err
		}
		if err := p.Save(); err != nil {
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
		_ = local.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Profile created: %s\nLocal store: %s\n", p.File, p.StorePath())
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved client profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		shown := *p
		if shown.Token != "" {
			shown.Token = "********"
		}
		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# profile: %s\n# store: %s\n%s", p.File, p.StorePath(), data)
		return nil
	},
}

type loginFlags struct {
	server   string
	email    string
	password string
}

var loginFlag = new(loginFlags)

var loginCmd = &cobra.Command{
	Use:   "login --email EMAIL [--server URL] [--password PASSWORD]",
	Short: "Log in to a sync server and store the token in the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		if loginFlag.server != "" {
			p.Server = loginFlag.server
		}
		if loginFlag.email == "" {
			return errors.New("--email is required")
		}

		password := loginFlag.password
		if password == "" {
			if password, err = promptPassword(cmd); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		user, err := client.NewAPIFromProfile(p).Login(ctx, loginFlag.email, password)
		if err != nil {
			return err
		}
		p.Token = user.Token
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", p.Server, user.Username)
		return nil
	},
}

// promptPassword reads a password without echo on a terminal, or one line from a pipe
// promptPassword 终端下不回显读取密码，管道输入时读取一行
func promptPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("password is required")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync round with the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLocal(cmd, func(ctx context.Context, p *client.Profile, local *client.Local) error {
			report, err := client.NewSyncer(local, client.NewAPIFromProfile(p)).Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sync complete: sent %d, received %d, applied %d (last_sync %d)\n",
				report.Sent, report.Received, report.Applied, report.LastSync)
			return nil
		})
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing profile")

	fl := loginCmd.Flags()
	fl.StringVar(&loginFlag.server, "server", "", "sync server url, saved to the profile")
	fl.StringVar(&loginFlag.email, "email", "", "email or username")
	fl.StringVar(&loginFlag.password, "password", "", "password, prompted when omitted")

	rootCmd.AddCommand(initCmd, configCmd, loginCmd, syncCmd)
}
