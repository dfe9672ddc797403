package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/desajambearum/jambearum/internal/config"
	"github.com/desajambearum/jambearum/internal/service"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin and sample UMKM",
		Long: `Create the default admin account (admin / jambearum2024!) if it does not
exist yet, and add the sample UMKM entries that are missing by name.
Running it again changes nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

func runSeed(ctx context.Context, cfg *config.YAMLConfig, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(os.Stderr, cfg.Logging, false)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	authSvc, closeAuth, err := newAuthService(ctx, cfg, st, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	defer closeAuth()

	res, err := service.Seed(ctx, st, authSvc)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Debug("seed finished", "admin_created", res.AdminCreated, "umkm_created", len(res.UMKMCreated))

	if res.AdminCreated {
		fmt.Fprintf(out, "Created admin %q (password %q) - change it with 'jambearum admin passwd'\n",
			service.DefaultAdminUsername, service.DefaultAdminPassword)
	} else {
		fmt.Fprintf(out, "Admin %q already exists\n", service.DefaultAdminUsername)
	}
	for _, name := range res.UMKMCreated {
		fmt.Fprintf(out, "Created UMKM %q\n", name)
	}
	if len(res.UMKMCreated) == 0 {
		fmt.Fprintln(out, "Sample UMKM already present")
	}
	return nil
}
