package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/canteiro/internal/auth"
	"github.com/alexanderramin/canteiro/internal/cli/formatter"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia uma sessão",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, u, err := app.Auth.Login(cmd.Context(), email)
			if err != nil {
				return err
			}
			if err := auth.SaveSession(app.SessionFile, token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Sessão iniciada como %s", u.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Seu email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Encerra a sessão",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ClearSession(app.SessionFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Sessão encerrada"))
			return nil
		},
	}
}

func newWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Mostra o usuário da sessão",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, ok := auth.UserFromContext(cmd.Context())
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Nenhuma sessão ativa."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", formatter.Bold(u.Email), formatter.TruncID(u.ID))
			return nil
		},
	}
}
