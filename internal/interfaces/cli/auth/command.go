package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	authInfra "github.com/candlepin/candlepin-sub005/internal/infrastructure/auth"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/config"
	"github.com/candlepin/candlepin-sub005/internal/infrastructure/database"
	permissionInfra "github.com/candlepin/candlepin-sub005/internal/infrastructure/permission"
	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

var (
	env        string
	configPath string
)

type grantOptions struct {
	principal  string
	ownerID    string
	access     string
	role       string
	fullAccess bool
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Principal tokens and permission grants",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	cmd.AddCommand(newTokenCommand(), newGrantCommand())
	return cmd
}

func newTokenCommand() *cobra.Command {
	var principal string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env, configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			svc := authInfra.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.TokenTTL)
			token, err := svc.Generate(principal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&principal, "principal", "p", "", "Principal name (required)")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}

func newGrantCommand() *cobra.Command {
	opts := &grantOptions{}
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant a principal or role access to an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env, configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			gdb, err := database.Open(&cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}

			enforcer, err := permissionInfra.NewEnforcer(gdb, cfg.Permission.ModelPath, logger.NewLogger())
			if err != nil {
				return err
			}
			return applyGrant(enforcer, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.principal, "principal", "p", "", "Principal or role name (required)")
	cmd.Flags().StringVar(&opts.ownerID, "owner", "", "Owner ID to grant access to")
	cmd.Flags().StringVar(&opts.access, "access", string(permission.AccessReadOnly), "Access level: read_only, create or all")
	cmd.Flags().StringVar(&opts.role, "role", "", "Add the principal to this role instead of granting directly")
	cmd.Flags().BoolVar(&opts.fullAccess, "full-access", false, "Grant access to every owner")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}

type granter interface {
	GrantFullAccess(subject string) error
	GrantOwner(subject, ownerID string, access permission.Access) error
	AddRoleForUser(userID string, role string) error
}

func applyGrant(g granter, opts *grantOptions) error {
	switch {
	case opts.role != "":
		return g.AddRoleForUser(opts.principal, opts.role)
	case opts.fullAccess:
		return g.GrantFullAccess(opts.principal)
	case opts.ownerID != "":
		access, err := permission.ParseAccess(opts.access)
		if err != nil {
			return err
		}
		return g.GrantOwner(opts.principal, opts.ownerID, access)
	default:
		return fmt.Errorf("one of --owner, --full-access or --role is required")
	}
}
