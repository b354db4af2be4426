package cmd

import (
	"context"

	"github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/wordjobs/internal/search"
	"github.com/Laisky/wordjobs/internal/web"
	"github.com/Laisky/wordjobs/library/config"
	"github.com/Laisky/wordjobs/library/log"
	"github.com/Laisky/wordjobs/library/upstream"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `serve the landing page and the /search fan-out`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAPI(cmd.Context())
	},
}

func runAPI(ctx context.Context) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return errors.Wrap(err, "load settings")
	}
	if settings.Upstream.UserAgent == "" || settings.Upstream.AuthorizationKey == "" {
		log.Logger.Warn("usajobs credentials are not configured, job searches will be rejected upstream",
			zap.String("credentials_file", settings.Upstream.CredentialsFile))
	}

	coordinator, err := buildCoordinator(settings)
	if err != nil {
		return errors.Wrap(err, "build search coordinator")
	}

	engine, err := web.NewEngine(coordinator,
		web.LoadLandingPage(log.Logger.Named("landing"), settings.Web.IndexFile),
		web.WithLogger(log.Logger),
		web.WithMetrics(),
	)
	if err != nil {
		return errors.Wrap(err, "build http engine")
	}

	return web.RunServer(settings.Listen, engine)
}

// buildCoordinator wires the dictionary and job-search branches on one shared upstream client.
func buildCoordinator(settings config.Settings) (*search.Coordinator, error) {
	client, err := upstream.NewClient(
		upstream.WithTimeout(settings.Upstream.Timeout),
		upstream.WithLogger(log.Logger.Named("upstream")),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new upstream client")
	}

	dictionary, err := search.NewDictionarySource(client, settings.Upstream.DictionaryBaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "new dictionary source")
	}

	jobs, err := search.NewJobsSource(client, settings.Upstream.USAJobsBaseURL, search.JobsCredentials{
		Host:             settings.Upstream.USAJobsHost,
		UserAgent:        settings.Upstream.UserAgent,
		AuthorizationKey: settings.Upstream.AuthorizationKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new jobs source")
	}

	return search.NewCoordinator([]search.Source{dictionary, jobs},
		search.WithCoordinatorLogger(log.Logger.Named("search_coordinator")),
	)
}

func init() {
	rootCMD.AddCommand(apiCMD)
}
