package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/justintake/justintake/internal/config"
	"github.com/justintake/justintake/internal/domain/intake"
	"github.com/justintake/justintake/internal/domain/schema"
	"github.com/justintake/justintake/internal/platform/auth"
	"github.com/justintake/justintake/internal/platform/db"
	"github.com/justintake/justintake/internal/platform/middleware"
	"github.com/justintake/justintake/internal/platform/tenant"
	"github.com/justintake/justintake/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "intake-server",
		Short: "Multi-tenant patient intake API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(clinicCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the intake API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func clinicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Manage clinic configurations",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create or replace a clinic's form configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, _ := cmd.Flags().GetString("tenant")
			name, _ := cmd.Flags().GetString("name")
			fieldsFile, _ := cmd.Flags().GetString("fields")

			if tenantID == "" || name == "" {
				return fmt.Errorf("--tenant and --name are required")
			}

			var fields []schema.FieldDescriptor
			if fieldsFile != "" {
				raw, err := os.ReadFile(fieldsFile)
				if err != nil {
					return fmt.Errorf("read fields file: %w", err)
				}
				if err := json.Unmarshal(raw, &fields); err != nil {
					return fmt.Errorf("parse fields file: %w", err)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := schema.NewService(schema.NewPgRepository(pool))
			sch := &schema.Schema{
				TenantID:   strings.ToLower(tenantID),
				TenantName: name,
				Fields:     fields,
			}
			if err := svc.Save(ctx, sch); err != nil {
				return err
			}

			fmt.Printf("Clinic %q saved with %d field(s).\n", tenantID, len(fields))
			return nil
		},
	}
	createCmd.Flags().String("tenant", "", "Tenant identifier (matches the subdomain)")
	createCmd.Flags().String("name", "", "Clinic display name")
	createCmd.Flags().String("fields", "", "Path to a JSON file of form field descriptors")
	cmd.AddCommand(createCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}

	withLoginService := func(fn func(ctx context.Context, svc *auth.LoginService, cfg *config.Config) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := auth.NewLoginService(
				auth.NewPgUserRepository(pool),
				[]byte(cfg.JWTSecret),
				time.Duration(cfg.TokenTTLMin)*time.Minute,
			)
			return fn(ctx, svc, cfg)
		}
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operator account",
	}
	createCmd.Flags().String("tenant", "", "Tenant identifier")
	createCmd.Flags().String("username", "", "Login name")
	createCmd.Flags().String("password", "", "Initial password")
	createCmd.Flags().String("role", auth.RoleIntake, "Role: admin or intake")
	createCmd.RunE = withLoginService(func(ctx context.Context, svc *auth.LoginService, cfg *config.Config) error {
		tenantID, _ := createCmd.Flags().GetString("tenant")
		username, _ := createCmd.Flags().GetString("username")
		password, _ := createCmd.Flags().GetString("password")
		role, _ := createCmd.Flags().GetString("role")

		if tenantID == "" || username == "" || password == "" {
			return fmt.Errorf("--tenant, --username and --password are required")
		}

		if _, err := svc.CreateUser(ctx, strings.ToLower(tenantID), username, password, role); err != nil {
			return err
		}
		fmt.Printf("User %q created for tenant %q.\n", username, tenantID)
		return nil
	})
	cmd.AddCommand(createCmd)

	setPasswordCmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace a user's password",
	}
	setPasswordCmd.Flags().String("tenant", "", "Tenant identifier")
	setPasswordCmd.Flags().String("username", "", "Login name")
	setPasswordCmd.Flags().String("password", "", "New password")
	setPasswordCmd.RunE = withLoginService(func(ctx context.Context, svc *auth.LoginService, cfg *config.Config) error {
		tenantID, _ := setPasswordCmd.Flags().GetString("tenant")
		username, _ := setPasswordCmd.Flags().GetString("username")
		password, _ := setPasswordCmd.Flags().GetString("password")

		if tenantID == "" || username == "" || password == "" {
			return fmt.Errorf("--tenant, --username and --password are required")
		}

		if err := svc.SetPassword(ctx, strings.ToLower(tenantID), username, password); err != nil {
			return err
		}
		fmt.Printf("Password updated for %q.\n", username)
		return nil
	})
	cmd.AddCommand(setPasswordCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOriginFunc: corsOriginFunc(cfg),
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	// Tenant resolution applies to every route, including login and the
	// notification socket.
	e.Use(tenant.Middleware(tenant.NewSubdomainResolver()))

	// Wiring
	hub := websocket.NewHub()

	schemaService := schema.NewService(schema.NewPgRepository(pool))
	intakeService := intake.NewService(intake.NewPgRepository(pool), schemaService, hub, logger)
	loginService := auth.NewLoginService(
		auth.NewPgUserRepository(pool),
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.TokenTTLMin)*time.Minute,
	)

	// Public routes
	auth.NewHandler(loginService).RegisterRoutes(e)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authenticated API
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevMiddleware())
	} else {
		apiV1.Use(auth.Middleware([]byte(cfg.JWTSecret)))
	}

	schema.NewHandler(schemaService).RegisterRoutes(apiV1)
	intake.NewHandler(intakeService).RegisterRoutes(apiV1)
	websocket.NewHandler(hub).RegisterRoutes(e.Group(""))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// corsOriginFunc allows any subdomain of the configured base domain plus
// the explicitly configured origins.
func corsOriginFunc(cfg *config.Config) func(origin string) (bool, error) {
	allowed := make(map[string]bool, len(cfg.CORSOrigins))
	for _, o := range cfg.CORSOrigins {
		allowed[o] = true
	}

	return func(origin string) (bool, error) {
		if allowed[origin] {
			return true, nil
		}

		host := origin
		if _, rest, found := strings.Cut(origin, "://"); found {
			host = rest
		}
		host, _, _ = strings.Cut(host, ":")

		if host == cfg.BaseDomain || strings.HasSuffix(host, "."+cfg.BaseDomain) {
			return true, nil
		}
		return false, nil
	}
}
