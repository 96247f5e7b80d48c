package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"

	internalApp "github.com/haierkeys/jot-sync-service/internal/app"
	"github.com/haierkeys/jot-sync-service/internal/dao"
	"github.com/haierkeys/jot-sync-service/internal/model"
	"github.com/haierkeys/jot-sync-service/internal/service"
	"github.com/haierkeys/jot-sync-service/internal/upgrade"
	"github.com/haierkeys/jot-sync-service/pkg/fileurl"
	"github.com/haierkeys/jot-sync-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade every note store to the latest schema version",
	Long: `Upgrade every note store to the latest schema version.

Each per-user store under app.user-data-dir is opened and migrated in place.
It is safe to run this command multiple times - stores already at the latest
version are left untouched. A store written by a newer release is reported
and skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}

		appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Loading config from: %s\n", configRealpath)

		lg, err := logger.NewLogger(appConfig.GetLoggerConfig())
		if err != nil {
			fmt.Printf("Failed to init logger: %v\n", err)
			os.Exit(1)
		}

		// 共享认证库
		db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), lg)
		if err != nil {
			fmt.Printf("Failed to init database: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
		if err := model.AutoMigrate(db, "User"); err != nil {
			fmt.Printf("Auth database migration failed: %v\n", err)
			os.Exit(1)
		}

		registry := dao.NewStoreRegistry(fileurl.ResolvePath(appConfig.App.UserDataDir, ""), lg)
		users := service.NewUserService(dao.NewUserRepository(dao.New(db, appConfig.GetDatabaseConfig(), registry)), nil, lg, nil)
		registered, err := users.GetAllUIDs(cmd.Context())
		if err != nil {
			fmt.Printf("Failed to list users: %v\n", err)
			os.Exit(1)
		}

		failed, err := upgradeStores(cmd.Context(), registry, registered, lg)
		if err != nil {
			fmt.Printf("Upgrade failed: %v\n", err)
			os.Exit(1)
		}
		if failed > 0 {
			fmt.Printf("Upgrade finished, %d store(s) failed\n", failed)
			os.Exit(1)
		}

		fmt.Println("Note store upgrade completed successfully!")
	},
}

// upgradeStores 逐个打开并升级用户笔记库，已注册但没有库文件的用户会新建空库，返回失败数量
func upgradeStores(ctx context.Context, registry *dao.StoreRegistry, registered []int64, lg *zap.Logger) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	onDisk, err := registry.UIDs()
	if err != nil {
		return 0, err
	}

	fmt.Printf("Found %d note store(s) in %s, latest schema version is %d\n", len(onDisk), registry.Dir(), upgrade.LatestVersion)

	uids := append([]int64(nil), onDisk...)
	uids = append(uids, registered...)
	slices.Sort(uids)
	uids = slices.Compact(uids)

	failed := 0
	for _, uid := range uids {
		db, res, err := dao.OpenNoteStore(ctx, registry.Path(uid))
		if err != nil {
			failed++
			fmt.Printf("  uid %d: FAILED at version %d: %v\n", uid, res.From, err)
			lg.Error("note store upgrade failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
			continue
		}
		_ = dao.CloseNoteStore(db)

		if res.From == 0 && !slices.Contains(onDisk, uid) {
			fmt.Printf("  uid %d: created at version %d\n", uid, res.To)
		} else if res.Applied() {
			fmt.Printf("  uid %d: upgraded %d -> %d\n", uid, res.From, res.To)
			lg.Info("note store upgraded", zap.Int64(logger.FieldUID, uid), zap.Int("from", res.From), zap.Int("to", res.To))
		} else {
			fmt.Printf("  uid %d: up to date (version %d)\n", uid, res.To)
		}
	}
	return failed, nil
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringP("config", "c", "", "config file path")
}
