package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/alexanderramin/canteiro/internal/auth"
	"github.com/alexanderramin/canteiro/internal/repository"
	"github.com/alexanderramin/canteiro/internal/service"
)

// App holds the services and session settings used by CLI commands.
type App struct {
	Projects    service.ProjectService
	Stages      service.StageService
	Units       service.UnitService
	Propagation service.PropagationService
	UnitStages  service.UnitStageService

	Auth        *auth.Authenticator
	Users       repository.UserRepo
	SessionFile string

	// IsInteractive reports whether prompts and spinners may be shown.
	// Nil means never.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh prompt.
	Confirm func(title string) (bool, error)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "canteiro" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "canteiro",
		Short:         "Acompanhamento de obras por unidade e etapa",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return attachSession(cmd, app)
		},
	}

	root.AddCommand(
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoAmICmd(app),
		newProjectCmd(app),
		newStageCmd(app),
		newUnitCmd(app),
		newStepCmd(app),
		newPhotoCmd(app),
	)

	return root
}

// attachSession puts the stored session's user on the command context. A
// missing or stale session leaves the context anonymous; writes then fail
// with ErrAuthRequired.
func attachSession(cmd *cobra.Command, app *App) error {
	if app.Auth == nil || app.SessionFile == "" {
		return nil
	}
	token, err := auth.LoadSession(app.SessionFile)
	if err != nil || token == "" {
		return err
	}
	u, err := app.Auth.Authenticate(cmd.Context(), token)
	if err != nil {
		if apperr.IsAuthRequired(err) {
			return nil
		}
		return err
	}
	cmd.SetContext(auth.WithUser(cmd.Context(), u))
	return nil
}

var resourceLabels = map[string]string{
	"project":    "obra",
	"stage":      "etapa",
	"unit":       "unidade",
	"unit stage": "etapa da unidade",
	"photo":      "foto",
	"user":       "usuário",
}

func resourceLabel(r string) string {
	if l, ok := resourceLabels[r]; ok {
		return l
	}
	return r
}

// FormatError renders err for the terminal.
func FormatError(err error) string {
	var (
		ve *apperr.ValidationError
		de *apperr.DuplicateError
		ne *apperr.NotFoundError
	)
	switch {
	case apperr.IsAuthRequired(err):
		return "sessão necessária: execute 'canteiro login --email <seu-email>'"
	case errors.As(err, &ve):
		return fmt.Sprintf("valor inválido para %s: %s", ve.Field, ve.Message)
	case errors.As(err, &de):
		return fmt.Sprintf("%s já existe: %s", resourceLabel(de.Resource), de.Key)
	case errors.As(err, &ne):
		return fmt.Sprintf("%s inexistente: %s", resourceLabel(ne.Resource), ne.ID)
	}
	if be, ok := apperr.AsBatch(err); ok {
		return fmt.Sprintf("etapa %q interrompida após %d de %d: %v", be.Step, be.Done, be.Total, be.Err)
	}
	return err.Error()
}
