package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/desajambearum/jambearum/internal/config"
	"github.com/desajambearum/jambearum/internal/server"
	"github.com/desajambearum/jambearum/internal/service"
	"github.com/desajambearum/jambearum/internal/storage"
)

const banner = `
     _                 _
    | | __ _ _ __ ___ | |__   ___  __ _ _ __ _   _ _ __ ___
 _  | |/ _' | '_ ' _ \| '_ \ / _ \/ _' | '__| | | | '_ ' _ \
| |_| | (_| | | | | | | |_) |  __/ (_| | |  | |_| | | | | | |
 \___/ \__,_|_| |_| |_|_.__/ \___|\__,_|_|   \__,_|_| |_| |_|
`

func newServeCmd() *cobra.Command {
	var (
		noUI bool
		dev  bool
		seed bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the village website and admin API",
		Long:  "Start the HTTP server that serves the public pages, the public JSON API and the cookie-authenticated admin back-office.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if noUI {
				cfg.Server.EnableUI = false
			}
			return runServe(cmd.Context(), cfg, dev, seed)
		},
	}

	cmd.Flags().IntP("port", "p", 3000, "HTTP listen port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Disable the HTML pages and serve only the API")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (debug logging)")
	cmd.Flags().BoolVar(&seed, "seed", false, "Create the default admin and sample UMKM before serving")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(ctx context.Context, cfg *config.YAMLConfig, dev, seed bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Print(banner)
	fmt.Println()

	logger, err := newLogger(os.Stderr, cfg.Logging, dev)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// 1. Open the data store
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("store initialized", "driver", st.Driver(), "data_dir", cfg.ResolveDataDir())

	// 2. Session service (optionally backed by the Redis denylist)
	authSvc, closeAuth, err := newAuthService(ctx, cfg, st, logger)
	if err != nil {
		return err
	}
	defer closeAuth()

	// 3. Seed or warn about a missing admin
	if seed {
		res, err := service.Seed(ctx, st, authSvc)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seed complete", "admin_created", res.AdminCreated, "umkm_created", len(res.UMKMCreated))
	} else if hasAdmin, err := st.HasAnyAdmin(ctx); err != nil {
		logger.Warn("failed to check for admin", "error", err)
	} else if !hasAdmin {
		logger.Warn("no admin account found - run: jambearum seed or jambearum admin create")
	}

	// 4. Upload directory
	uploads, err := storage.NewLocalStore(cfg.UploadDir(), cfg.Upload.BaseURL)
	if err != nil {
		return fmt.Errorf("init upload store: %w", err)
	}

	// 5. Build and start HTTP server
	maxBody, err := cfg.Server.BodyLimit()
	if err != nil {
		return err
	}
	srvCfg := server.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.Shutdown(),
		CORSOrigins:     cfg.Server.CORS.Origins,
		EnableUI:        cfg.Server.EnableUI,
		MaxBodySize:     maxBody,
		LoginRateLimit:  cfg.Auth.LoginRateLimit,
		Version:         versionString(),
	}

	srv := server.New(srvCfg, st, authSvc, uploads, logger)

	base := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("→ Jambearum %s\n", versionString())
	fmt.Printf("→ Listening on %s\n", base)
	if cfg.Server.EnableUI {
		fmt.Printf("→ Admin:      %s/admin\n", base)
	}
	fmt.Printf("→ OpenAPI:    %s/openapi.json\n", base)
	fmt.Printf("→ Health:     %s/healthz\n", base)
	fmt.Println()

	return srv.ListenAndServe()
}
