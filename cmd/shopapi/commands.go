package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bwmarrin/snowflake"
	"github.com/go-extras/cobraflags"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/retouchshop/shopapi/config"
	"github.com/retouchshop/shopapi/internal/adminapi"
	"github.com/retouchshop/shopapi/internal/app"
	"github.com/retouchshop/shopapi/internal/catalog"
	"github.com/retouchshop/shopapi/internal/storage"
	"github.com/retouchshop/shopapi/internal/telegram"
	"github.com/retouchshop/shopapi/internal/webserver"
)

const (
	routeFlag  = "route"
	formatFlag = "format"
	outFlag    = "out"
)

var lambdaFlags = map[string]cobraflags.Flag{
	routeFlag: &cobraflags.StringFlag{
		Name:  routeFlag,
		Value: "",
		Usage: "Route the function serves (/products, /telegram, /upload). Empty uses the event path",
	},
}

var exportFlags = map[string]cobraflags.Flag{
	formatFlag: &cobraflags.StringFlag{
		Name:  formatFlag,
		Value: "xlsx",
		Usage: "Output format (xlsx or csv)",
	},
	outFlag: &cobraflags.StringFlag{
		Name:  outFlag,
		Value: "",
		Usage: "Output file. Defaults to stdout",
	},
}

// services bundles what every command needs once the config is loaded.
type services struct {
	cfg      *config.AppConfig
	app      app.AppContext
	repo     *catalog.GormRepository
	importer *catalog.Importer
}

func bootstrap() (*services, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		return nil, errors.Wrap(err, "init application")
	}
	node, err := snowflake.NewNode(cfg.System.NodeId)
	if err != nil {
		application.Release()
		return nil, errors.Wrapf(err, "snowflake node %d", cfg.System.NodeId)
	}
	repo := catalog.NewGormRepository(application.DB(), node)
	return &services{
		cfg:      cfg,
		app:      application,
		repo:     repo,
		importer: catalog.NewImporter(repo),
	}, nil
}

func (rt *services) server() *webserver.Server {
	s := webserver.NewServer(rt.cfg)
	adminapi.Init(s, &adminapi.Handlers{
		DB:       rt.app.DB(),
		Products: rt.repo,
		Importer: rt.importer,
		Notifier: telegram.NewClient(rt.cfg.Telegram),
		Uploader: storage.NewUploader(rt.cfg.Storage),
	})
	return s
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.app.Release()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := rt.server()
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return s.Start(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				zap.L().Info("shutdown requested")
				return nil
			})
			return g.Wait()
		},
	}
}

func newLambdaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Serve API Gateway proxy events as an AWS Lambda function",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.app.Release()

			route := lambdaFlags[routeFlag].GetString()
			zap.L().Info("lambda handler starting", zap.String("route", route))
			lambda.Start(rt.server().LambdaHandler(route))
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, lambdaFlags)
	return cmd
}

func newMigrateCommand() *cobra.Command {
	var drop bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.app.Release()

			if drop {
				if err := rt.app.InitDb(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema recreated")
				return nil
			}
			if err := rt.app.MigrateDB(rt.cfg.Database.Debug); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "drop all tables before migrating")
	return cmd
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import products from a local workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.app.Release()

			result, err := rt.importer.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  row %d: %s\n", e.Row, e.Message)
			}
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as xlsx or csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := exportFlags[formatFlag].GetString()
			write := catalog.WriteXLSX
			switch format {
			case "xlsx":
			case "csv":
				write = catalog.WriteCSV
			default:
				return errors.Errorf("unsupported format %q", format)
			}

			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.app.Release()

			rows, err := rt.repo.List(cmd.Context(), "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path := exportFlags[outFlag].GetString(); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return write(out, rows)
		},
	}
	cobraflags.RegisterMap(cmd, exportFlags)
	return cmd
}
