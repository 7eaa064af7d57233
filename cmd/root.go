package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wms-audit/config"
	"wms-audit/controllers"
	"wms-audit/controllers/idgen"
	"wms-audit/database"
	"wms-audit/events"
	"wms-audit/middleware"
	"wms-audit/migration"
	"wms-audit/notifier"
	"wms-audit/routes"
	"wms-audit/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audit HTTP API.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		migrate, _ := cmd.Flags().GetBool("migrate")
		return serve(cmd.Context(), migrate)
	},
}

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, _, err := bootstrap()
		if err != nil {
			return err
		}
		if err := migration.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		return nil
	},
}

var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo users, a warehouse, products and stock.",
	Long:  `Command that exists and should be used only for development purposes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, _, err := bootstrap()
		if err != nil {
			return err
		}
		if err := migration.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		if err := database.RunSeeders(db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		return nil
	},
}

func Execute() {
	rootCmd := &cobra.Command{
		Use:   "wms-audit",
		Short: "Physical inventory audit reconciliation service",
		// No subcommand behaves like "serve".
		RunE: ServeCmd.RunE,
	}
	ServeCmd.Flags().Bool("migrate", true, "Run schema migration before serving")
	rootCmd.Flags().AddFlagSet(ServeCmd.Flags())
	rootCmd.AddCommand(ServeCmd, MigrateCmd, SeedCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bootstrap() (*gorm.DB, *logrus.Logger, error) {
	config.LoadConfig()
	log := config.NewLogger(config.LogLevel)

	if err := idgen.Init(int64(config.SnowflakeNode)); err != nil {
		return nil, nil, fmt.Errorf("init snowflake node %d: %w", config.SnowflakeNode, err)
	}

	db, err := database.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return db, log, nil
}

func serve(ctx context.Context, migrate bool) error {
	db, log, err := bootstrap()
	if err != nil {
		return err
	}
	if migrate {
		if err := migration.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	var locker services.Locker = services.NoopLocker()
	rdb, lockClient, err := config.ConnectRedis(ctx)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		locker = services.NewRedisLocker(lockClient, log)
	}

	bus := events.NewBus()
	bus.Subscribe(events.LogSubscriber(log))
	if mail := notifier.NewMailNotifier(log); mail != nil {
		bus.Subscribe(mail.Handle)
	}

	app := NewApp(db, locker, bus, log)

	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	log.WithField("port", config.APP_PORT).Info("server starting")
	return app.Listen(":" + config.APP_PORT)
}

// NewApp wires services, controllers and routes onto a fresh fiber app.
func NewApp(db *gorm.DB, locker services.Locker, bus *events.Bus, log *logrus.Logger) *fiber.App {
	app := fiber.New()
	app.Use(recover.New())
	config.SetupCORS(app)

	auth := middleware.NewAuthMiddleware(config.JWTSecret)

	teams := controllers.NewAuditTeamController(services.NewTeamService(db, log), log)
	sessions := controllers.NewAuditSessionController(services.NewAuditSessionService(db, locker, bus, log), log)
	reports := controllers.NewAuditReportController(services.NewAuditReportService(db), log)

	routes.SetupHealthRoutes(app, db)
	routes.SetupAuditTeamRoutes(app, auth, teams)
	routes.SetupAuditSessionRoutes(app, auth, sessions, reports)
	return app
}
