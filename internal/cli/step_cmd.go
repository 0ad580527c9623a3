package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/canteiro/internal/cli/formatter"
	"github.com/alexanderramin/canteiro/internal/domain"
)

const stepRefHelp = "Uma etapa de unidade é indicada como <unidade>:<etapa> (ex.: 301:Pintura) " +
	"com --project, ou pelo ID completo."

func newStepCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:     "step",
		Aliases: []string{"passo"},
		Short:   "Acompanha as etapas de cada unidade",
		Long:    "Acompanha as etapas de cada unidade. " + stepRefHelp,
	}
	addProjectFlag(cmd.PersistentFlags(), &project)

	cmd.AddCommand(
		newStepListCmd(app, &project),
		newStepStatusCmd(app, &project),
		newStepNotesCmd(app, &project),
		newStepRenameCmd(app, &project),
		newStepMoveCmd(app, &project),
		newStepRemoveCmd(app, &project),
		newStepAddCmd(app, &project),
		newStepAddNewCmd(app, &project),
		newStepLogCmd(app, &project),
	)

	return cmd
}

// stepRef resolves a unit stage reference, with --project optional.
func stepRef(cmd *cobra.Command, app *App, project, input string) (string, error) {
	projectID := ""
	if project != "" {
		var err error
		if projectID, err = resolveProjectID(cmd.Context(), app, project); err != nil {
			return "", err
		}
	}
	return resolveStepID(cmd.Context(), app, projectID, input)
}

func newStepListCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <unidade>",
		Short: "Lista as etapas de uma unidade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitID, err := unitRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			d, err := app.Units.Detail(cmd.Context(), unitID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStageViews(d.Stages))
			return nil
		},
	}
}

func newStepStatusCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status <etapa> <pending|in_progress|done>",
		Short: "Altera a situação de uma etapa da unidade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			us, err := app.UnitStages.SetStatus(cmd.Context(), id, domain.Status(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Situação: %s", formatter.StatusPill(us.Status)))
			return nil
		},
	}
}

func newStepNotesCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <etapa> [texto...]",
		Short: "Substitui as observações de uma etapa da unidade",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			if _, err := app.UnitStages.SetNotes(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Observações salvas"))
			return nil
		},
	}
}

func newStepRenameCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <etapa> [nome...]",
		Short: "Dá um nome próprio à etapa nesta unidade; sem nome, volta ao do modelo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			us, err := app.Propagation.RenameInstance(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if us.CustomName == nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Nome do modelo restaurado"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa renomeada para %s", *us.CustomName))
			}
			return nil
		},
	}
}

func newStepMoveCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "move <etapa> <up|down>",
		Short: "Move uma etapa uma posição dentro da unidade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := parseDirection(args[1])
			if err != nil {
				return err
			}
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			us, err := app.Propagation.MoveInstance(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa agora na posição %d", us.OrderIndex))
			return nil
		},
	}
}

func newStepRemoveCmd(app *App, project *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <etapa>",
		Short: "Remove a etapa desta unidade com suas fotos e histórico",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			ok, err := app.confirm(fmt.Sprintf("Remover a etapa %s da unidade?", args[0]), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Propagation.DeleteInstance(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa removida"))
			return nil
		},
	}

	addYesFlag(cmd.Flags(), &yes)

	return cmd
}

func newStepAddCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <unidade> <etapa do modelo>",
		Short: "Inclui uma etapa existente do modelo em uma unidade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			unitID, err := resolveUnitID(cmd.Context(), app, projectID, args[0])
			if err != nil {
				return err
			}
			stageID, err := resolveStageID(cmd.Context(), app, projectID, args[1])
			if err != nil {
				return err
			}
			us, err := app.Propagation.AddStageToUnit(cmd.Context(), unitID, stageID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa incluída na posição %d", us.OrderIndex))
			return nil
		},
	}
}

func newStepAddNewCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add-new <unidade> <nome...>",
		Short: "Cria uma etapa no modelo e a inclui apenas nesta unidade",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			unitID, err := unitRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			u, err := app.Units.Get(cmd.Context(), unitID)
			if err != nil {
				return err
			}
			st, _, err := app.Propagation.CreateStageForUnit(cmd.Context(), u.ProjectID, unitID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa %s criada e incluída em %s", st.Name, u.Label()))
			return nil
		},
	}
}

func newStepLogCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "log <etapa>",
		Short: "Mostra o histórico de alterações",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			logs, err := app.UnitStages.ListLogs(cmd.Context(), id)
			if err != nil {
				return err
			}
			emails := make(map[string]string)
			for _, l := range logs {
				if _, seen := emails[l.UserID]; seen || app.Users == nil {
					continue
				}
				emails[l.UserID] = ""
				if u, err := app.Users.GetByID(cmd.Context(), l.UserID); err == nil {
					emails[l.UserID] = u.Email
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLogs(logs, emails, time.Now()))
			return nil
		},
	}
}
