package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/desajambearum/jambearum/internal/config"
	"github.com/desajambearum/jambearum/internal/model"
	"github.com/desajambearum/jambearum/internal/service"
	"github.com/desajambearum/jambearum/internal/store"
)

const minPasswordLen = 8

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
		Long:  "Create, list, disable and re-enable the accounts that can sign in to the admin back-office.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())
	cmd.AddCommand(newAdminSetActiveCmd("disable", false))
	cmd.AddCommand(newAdminSetActiveCmd("enable", true))
	cmd.AddCommand(newAdminPasswdCmd())

	return cmd
}

// adminEnv bundles what every admin subcommand needs.
type adminEnv struct {
	store   *store.Store
	authSvc *service.AuthService
	close   func()
}

func openAdminEnv(ctx context.Context, cfg *config.YAMLConfig) (*adminEnv, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	authSvc, closeAuth, err := newAuthService(ctx, cfg, st, slog.New(slog.DiscardHandler))
	if err != nil {
		st.Close()
		return nil, err
	}
	return &adminEnv{
		store:   st,
		authSvc: authSvc,
		close: func() {
			closeAuth()
			st.Close()
		},
	}, nil
}

// ---------- admin create ----------

type adminCreateOptions struct {
	username string
	email    string
	name     string
	password string
}

func newAdminCreateCmd() *cobra.Command {
	var opts adminCreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin account",
		Example: `  jambearum admin create --username kades --email kades@jambearum.desa.id --password rahasia123
  jambearum admin create --username kades --email kades@jambearum.desa.id  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.password == "" {
				if opts.password, err = promptNewPassword(); err != nil {
					return err
				}
			}
			return runAdminCreate(cmd.Context(), cfg, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.username, "username", "", "Login name (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Display name (defaults to the username)")
	cmd.Flags().StringVar(&opts.password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAdminCreate(ctx context.Context, cfg *config.YAMLConfig, out io.Writer, opts adminCreateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	username := strings.TrimSpace(opts.username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !strings.Contains(opts.email, "@") {
		return fmt.Errorf("invalid email address: %q", opts.email)
	}
	if len(opts.password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	name := opts.name
	if name == "" {
		name = username
	}

	env, err := openAdminEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.close()

	hash, err := env.authSvc.HashPassword(opts.password)
	if err != nil {
		return err
	}
	admin := &model.Admin{
		Username:     username,
		Email:        opts.email,
		Name:         name,
		Role:         model.RoleAdmin,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := env.store.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("admin %q already exists", username)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(out, "Created admin user %q\n", username)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runAdminList(cmd.Context(), cfg, cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAdminList(ctx context.Context, cfg *config.YAMLConfig, out io.Writer, jsonOutput bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	admins, err := st.ListAdmins(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	if jsonOutput {
		if admins == nil {
			admins = []model.Admin{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Fprintln(out, "No admin users configured. Use 'jambearum seed' or 'jambearum admin create' to create one.")
		return nil
	}

	fmt.Fprintf(out, "%-20s %-30s %-24s %-8s %s\n", "USERNAME", "EMAIL", "NAME", "ACTIVE", "LAST LOGIN")
	fmt.Fprintf(out, "%-20s %-30s %-24s %-8s %s\n", "--------", "-----", "----", "------", "----------")
	for _, a := range admins {
		active := "yes"
		if !a.IsActive {
			active = "no"
		}
		lastLogin := "never"
		if a.LastLogin != nil {
			lastLogin = a.LastLogin.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "%-20s %-30s %-24s %-8s %s\n", a.Username, a.Email, a.Name, active, lastLogin)
	}

	return nil
}

// ---------- admin disable / enable ----------

func newAdminSetActiveCmd(use string, active bool) *cobra.Command {
	short := "Disable an admin account so it can no longer sign in"
	if active {
		short = "Re-enable a disabled admin account"
	}

	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runAdminSetActive(cmd.Context(), cfg, cmd.OutOrStdout(), args[0], active)
		},
	}
}

func runAdminSetActive(ctx context.Context, cfg *config.YAMLConfig, out io.Writer, username string, active bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SetAdminActive(ctx, username, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("admin %q not found", username)
		}
		return fmt.Errorf("update admin: %w", err)
	}

	state := "disabled"
	if active {
		state = "enabled"
	}
	fmt.Fprintf(out, "Admin %q %s\n", username, state)
	return nil
}

// ---------- admin passwd ----------

func newAdminPasswdCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change an admin password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = promptNewPassword(); err != nil {
					return err
				}
			}
			return runAdminPasswd(cmd.Context(), cfg, cmd.OutOrStdout(), args[0], password)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password (prompted if omitted)")

	return cmd
}

func runAdminPasswd(ctx context.Context, cfg *config.YAMLConfig, out io.Writer, username, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	env, err := openAdminEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.close()

	hash, err := env.authSvc.HashPassword(password)
	if err != nil {
		return err
	}
	if err := env.store.UpdateAdminPassword(ctx, username, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("admin %q not found", username)
		}
		return fmt.Errorf("update password: %w", err)
	}

	fmt.Fprintf(out, "Password updated for %q\n", username)
	return nil
}

// promptNewPassword reads a password twice from the terminal without echo.
func promptNewPassword() (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}
