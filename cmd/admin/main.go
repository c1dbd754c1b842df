package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/asalkic/zgrada-server/internal/config"
	"github.com/asalkic/zgrada-server/internal/models"
	"github.com/asalkic/zgrada-server/internal/repository"
)

func main() {
	root := &cobra.Command{
		Use:          "zgrada-admin",
		Short:        "Operator tooling for the building management server",
		SilenceUsage: true,
	}

	root.AddCommand(
		createAdminCmd(),
		resetPasswordCmd(),
		seedApartmentsCmd(),
		cleanupCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openRepository() (repository.Repository, func(), error) {
	cfg := config.LoadConfig()

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	return repository.NewPostgresRepository(db), func() { db.Close() }, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func createAdminCmd() *cobra.Command {
	var email, password, fullName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account directly, bypassing the HTTP bootstrap",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := commandContext()
			defer cancel()

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}

			user := &models.User{
				Email:        email,
				PasswordHash: string(hash),
				FullName:     fullName,
				Role:         models.RoleAdmin,
				IsActive:     true,
			}

			if err := repo.CreateUser(ctx, user); err != nil {
				return fmt.Errorf("creating admin: %w", err)
			}

			fmt.Printf("admin created: id=%d email=%s\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().StringVar(&fullName, "name", "", "admin full name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	cmd.MarkFlagRequired("name")

	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := commandContext()
			defer cancel()

			user, err := repo.GetUserByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("looking up user: %w", err)
			}
			if user == nil {
				return fmt.Errorf("no user with email %s", email)
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hashing password: %w", err)
			}

			if err := repo.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
				return fmt.Errorf("updating password: %w", err)
			}

			fmt.Printf("password updated for %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "user email address")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func seedApartmentsCmd() *cobra.Command {
	var building, floors, perFloor int
	var fee string

	cmd := &cobra.Command{
		Use:   "seed-apartments",
		Short: "Create the apartment roster for one building",
		RunE: func(cmd *cobra.Command, args []string) error {
			monthlyFee, err := decimal.NewFromString(fee)
			if err != nil {
				return fmt.Errorf("parsing fee: %w", err)
			}
			if monthlyFee.IsNegative() {
				return fmt.Errorf("fee cannot be negative")
			}

			repo, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := commandContext()
			defer cancel()

			created := 0
			number := 1
			for floor := 0; floor < floors; floor++ {
				for i := 0; i < perFloor; i++ {
					apartment := &models.Apartment{
						BuildingNumber:  building,
						ApartmentNumber: number,
						Floor:           floor,
						MonthlyFee:      monthlyFee,
					}
					err := repo.CreateApartment(ctx, apartment)
					if errors.Is(err, repository.ErrDuplicate) {
						// Already seeded; skip so the command is rerunnable.
						number++
						continue
					}
					if err != nil {
						return fmt.Errorf("creating apartment %d: %w", number, err)
					}
					created++
					number++
				}
			}

			fmt.Printf("seeded %d apartments in building %d\n", created, building)
			return nil
		},
	}

	cmd.Flags().IntVar(&building, "building", 1, "building number")
	cmd.Flags().IntVar(&floors, "floors", 1, "number of floors, starting at 0")
	cmd.Flags().IntVar(&perFloor, "per-floor", 1, "apartments per floor")
	cmd.Flags().StringVar(&fee, "fee", "0", "monthly fee per apartment")

	return cmd
}

func cleanupCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete all payments, expenses, invitations and non-admin users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to wipe data without --yes")
			}

			repo, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, cancel := commandContext()
			defer cancel()

			if err := repo.Cleanup(ctx); err != nil {
				return fmt.Errorf("cleanup: %w", err)
			}

			fmt.Println("transactional data wiped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm the wipe")

	return cmd
}
