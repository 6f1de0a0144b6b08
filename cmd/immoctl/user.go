package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"immodash/internal/auth"
	"immodash/internal/domain"
)

type userInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"max=128"`
	Role     string `validate:"required,oneof=admin agent viewer"`
	Password string `validate:"required,min=8"`
}

var newUser userInput

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create or update an account",
	Long: `Creates the account, or updates name, role and password when the email exists.
The password is read from IMMODASH_PASSWORD when --password is omitted.

Examples:
  immoctl user add --email agent@immodash.ci --name "Agent Terrain" --role agent
  IMMODASH_PASSWORD=... immoctl user add --email demo@immodash.ci --role viewer`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := newUser
		in.Email = strings.ToLower(strings.TrimSpace(in.Email))
		if in.Password == "" {
			in.Password = os.Getenv("IMMODASH_PASSWORD")
		}
		if err := validator.New().Struct(in); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return fmt.Errorf("invalid %s", strings.ToLower(verrs[0].Field()))
			}
			return err
		}

		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return err
		}
		e, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		u := domain.User{Email: in.Email, Name: in.Name, Role: domain.Role(in.Role), PasswordHash: hash}
		if err := e.repo.UpsertUser(cmd.Context(), u); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s saved as %s\n", u.Email, u.Role)
		return nil
	},
}

func init() {
	f := userAddCmd.Flags()
	f.StringVar(&newUser.Email, "email", "", "login email")
	f.StringVar(&newUser.Name, "name", "", "display name")
	f.StringVar(&newUser.Role, "role", string(domain.RoleViewer), "admin, agent or viewer")
	f.StringVar(&newUser.Password, "password", "", "plain password (prefer IMMODASH_PASSWORD)")
	_ = userAddCmd.MarkFlagRequired("email")
	userCmd.AddCommand(userAddCmd)
}
