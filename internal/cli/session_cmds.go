package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nappylocks/client-sdk/internal/core/ports"
)

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <identifier>",
		Short: "Sign in with an email or username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				return errors.New("a password is required (--password)")
			}

			if !a.sessions.Login(cmd.Context(), args[0], password) {
				return errors.New("login failed")
			}
			return printSnapshot(cmd, a)
		},
	}
	cmd.Flags().StringP("password", "p", "", "Account password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := ports.RegisterInput{}
			in.Username, _ = cmd.Flags().GetString("username")
			in.Email, _ = cmd.Flags().GetString("email")
			in.Telephone, _ = cmd.Flags().GetString("telephone")
			in.Password, _ = cmd.Flags().GetString("password")

			if !a.sessions.Register(cmd.Context(), in) {
				return errors.New("registration failed")
			}
			return printSnapshot(cmd, a)
		},
	}
	cmd.Flags().String("username", "", "Display name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("telephone", "", "Phone number (optional)")
	cmd.Flags().StringP("password", "p", "", "Account password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.sessions.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printSnapshot(cmd, a)
		},
	}
}

func newResetPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.sessions.ResetPassword(cmd.Context(), args[0])
			fmt.Fprintln(cmd.OutOrStdout(), "if the address exists, a reset email has been sent")
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage the signed-in profile",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := ports.ProfileUpdate{}
			in.Username, _ = cmd.Flags().GetString("username")
			in.Email, _ = cmd.Flags().GetString("email")
			in.Telephone, _ = cmd.Flags().GetString("telephone")
			in.AvatarURL, _ = cmd.Flags().GetString("avatar-url")

			if !a.sessions.UpdateProfile(cmd.Context(), in) {
				return errors.New("profile update failed")
			}
			return printSnapshot(cmd, a)
		},
	}
	update.Flags().String("username", "", "New display name")
	update.Flags().String("email", "", "New email address")
	update.Flags().String("telephone", "", "New phone number")
	update.Flags().String("avatar-url", "", "New avatar reference")

	profile.AddCommand(update)
	return profile
}

func printSnapshot(cmd *cobra.Command, a *app) error {
	snap := a.sessions.Snapshot()

	out := map[string]any{
		"is_authenticated": snap.IsAuthenticated,
		"is_loading":       snap.IsLoading,
	}
	if snap.User != nil {
		out["user"] = snap.User
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
