package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-publish/internal/seed"
	"github.com/tendant/simple-publish/pkg/publishing"
	repopg "github.com/tendant/simple-publish/pkg/publishing/repo/postgres"
	"github.com/tendant/simple-publish/pkg/publishing/security"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.UsesPostgres() {
				return fmt.Errorf("DATABASE_URL must be a postgres URL, got %q", cfg.DatabaseURL)
			}
			if err := repopg.Migrate(cmd.Context(), cfg.DatabaseURL); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

// NewHashPasswordCommand creates the hash-password command
func NewHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := (&security.BcryptHasher{Cost: cost}).Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default 10)")
	return cmd
}

// NewCreateAdminCommand creates the create-admin command
func NewCreateAdminCommand() *cobra.Command {
	var email, password string
	var applications []string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user allowed for the given applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			if len(applications) == 0 {
				return fmt.Errorf("at least one --app is required")
			}

			_, rt, err := newRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			for _, id := range applications {
				exists, err := rt.Applications.ExistsByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("application %s does not exist", id)
				}
			}

			hash, err := rt.Passwords.Hash(password)
			if err != nil {
				return err
			}
			user, err := rt.AdminUsers.Save(cmd.Context(), &publishing.AdminUser{
				ID:                    uuid.NewString(),
				Email:                 email,
				PasswordHash:          hash,
				AllowedApplicationIDs: applications,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Admin created\nID: %s\nEmail: %s\nApplications: %s\n",
				user.ID, user.Email, strings.Join(user.AllowedApplicationIDs, ","))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringSliceVar(&applications, "app", nil, "allowed application id (repeatable)")
	return cmd
}

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo application and admin when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rt, err := newRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			seeder := &seed.Seeder{
				Applications: rt.Applications,
				AdminUsers:   rt.AdminUsers,
				Passwords:    rt.Passwords,
				Logger:       cmdLogger(cmd),
			}
			res, err := seeder.Run(cmd.Context(), cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Application: %s (created: %v)\nAdmin %s created: %v\n",
				res.ApplicationID, res.ApplicationCreated, cfg.Seed.AdminEmail, res.AdminCreated)
			return nil
		},
	}
}

// NewStorageCheckCommand creates the storage-check command
func NewStorageCheckCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "storage-check",
		Short: "Upload a probe object and print a presigned URL for it",
		Long: `Uploads a small text object through the configured media store (memory or
S3/MinIO) and presigns a download URL, verifying credentials, bucket and
endpoint settings end to end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rt, err := newRuntime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Storage: %s\n", cfg.Storage.Type)
			if cfg.Storage.Type == "s3" {
				fmt.Fprintf(out, "  Endpoint: %s\n  Region: %s\n  Bucket: %s\n  Use Path Style: %v\n",
					cfg.Storage.Endpoint, cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.UsePathStyle)
			}

			body := fmt.Sprintf("publishctl storage check %s", time.Now().UTC().Format(time.RFC3339))
			key := strings.TrimSuffix(prefix, "/") + "/" + uuid.NewString() + ".txt"
			result, err := rt.Store.Upload(cmd.Context(), publishing.UploadParams{
				ObjectKey:   key,
				Reader:      strings.NewReader(body),
				SizeHint:    int64(len(body)),
				ContentType: "text/plain",
			})
			if err != nil {
				return fmt.Errorf("upload probe: %w", err)
			}

			url, err := rt.Store.PresignedURL(cmd.Context(), result.ObjectKey, time.Duration(cfg.Storage.PresignExpirySeconds)*time.Second)
			if err != nil {
				return fmt.Errorf("presign probe: %w", err)
			}

			fmt.Fprintf(out, "Uploaded: %s (%d bytes, %s)\nURL: %s\n", result.ObjectKey, result.SizeBytes, result.ContentType, url)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "healthcheck", "object key prefix for the probe")
	return cmd
}
