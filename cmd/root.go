package cmd

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Laisky/wordjobs/library/config"
	"github.com/Laisky/wordjobs/library/log"
)

var rootCMD = &cobra.Command{
	Use:   "wordjobs",
	Short: "wordjobs",
	Long:  `dictionary and job search fan-out web server`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAPI(cmd.Context())
	},
}

func initialize(ctx context.Context, cmd *cobra.Command) error {
	if err := gconfig.S.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind pflags")
	}

	if err := setupSettings(ctx); err != nil {
		return errors.Wrap(err, "setup settings")
	}
	if err := setupLogger(ctx); err != nil {
		return errors.Wrap(err, "setup logger")
	}
	if err := validateStartupConfig(); err != nil {
		return errors.Wrap(err, "validate configuration")
	}

	return nil
}

func setupSettings(ctx context.Context) error {
	// mode
	if gconfig.S.GetBool("debug") {
		fmt.Println("run in debug mode")
		gconfig.S.Set("log-level", "debug")
	} else { // prod mode
		fmt.Println("run in prod mode")
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.LoadDotEnv(gconfig.S.GetString("env-file")); err != nil {
		return errors.WithStack(err)
	}

	return config.LoadFromFile(gconfig.S.GetString("config"))
}

func setupLogger(ctx context.Context) error {
	lvl := gconfig.S.GetString("log-level")
	if err := log.SetLevel(lvl); err != nil {
		return errors.Wrapf(err, "change log level to %q", lvl)
	}

	return nil
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().String("listen", "", "like `localhost:8080`, defaults to :$PORT")
	rootCMD.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCMD.PersistentFlags().String("env-file", ".env", "dotenv file loaded into the environment if present")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		log.Logger.Panic("start", zap.Error(err))
	}
}
