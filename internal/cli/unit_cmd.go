package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/canteiro/internal/bulk"
	"github.com/alexanderramin/canteiro/internal/cli/formatter"
	"github.com/alexanderramin/canteiro/internal/listing"
	"github.com/alexanderramin/canteiro/internal/service"
)

func newUnitCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:     "unit",
		Aliases: []string{"unidade"},
		Short:   "Gerencia as unidades de uma obra",
	}
	addProjectFlag(cmd.PersistentFlags(), &project)

	cmd.AddCommand(
		newUnitAddCmd(app, &project),
		newUnitListCmd(app, &project),
		newUnitShowCmd(app, &project),
		newUnitRemoveCmd(app, &project),
		newUnitGenerateCmd(app, &project),
		newUnitMissingCmd(app, &project),
		newUnitFillCmd(app, &project),
		newUnitSyncCmd(app, &project),
	)

	return cmd
}

func newUnitAddCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <identificador...>",
		Short: "Cria unidades sem etapas",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				u, err := app.Units.Create(cmd.Context(), projectID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Unidade %s criada", u.Identifier))
				return nil
			}
			created, err := app.Units.CreateBatch(cmd.Context(), projectID, args)
			if len(created) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("%d unidades criadas", len(created)))
			}
			return err
		},
	}
}

func newUnitListCmd(app *App, project *string) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista as unidades com progresso e situação",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			units, err := app.Units.List(cmd.Context(), projectID, flags.filter(), flags.sort.key)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUnitList(units))
			return nil
		},
	}

	flags.register(cmd.Flags(), true)

	return cmd
}

func newUnitShowCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <unidade>",
		Short: "Mostra a unidade e suas etapas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := unitRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			d, err := app.Units.Detail(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUnitDetail(d))
			return nil
		},
	}
}

func newUnitRemoveCmd(app *App, project *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <unidade>",
		Short: "Exclui a unidade com suas etapas, fotos e histórico",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := unitRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			u, err := app.Units.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			ok, err := app.confirm(fmt.Sprintf("Excluir a unidade %s?", u.Label()), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Units.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Unidade %s excluída", u.Label()))
			return nil
		},
	}

	addYesFlag(cmd.Flags(), &yes)

	return cmd
}

func newUnitGenerateCmd(app *App, project *string) *cobra.Command {
	var (
		plan       bulk.FloorPlan
		withStages bool
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Gera unidades andar por andar",
		Long: "Gera identificadores andar a andar (andar seguido da posição, ex.: 301, 302) " +
			"e cria os que a obra ainda não tem. Com --with-stages, aplica o modelo de etapas às novas unidades.",
		Example: "  canteiro unit generate -p Aurora --from 1 --to 10 --per-floor 4 --with-stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			plan.Confirmed = yes
			result, err := generate(cmd.Context(), app, cmd, projectID, plan, withStages)
			if errors.Is(err, bulk.ErrConfirmationRequired) {
				ok, cerr := app.confirm(fmt.Sprintf("%d unidades por andar está acima do limite. Continuar?", plan.UnitsPerFloor), false)
				if cerr != nil {
					return cerr
				}
				if !ok {
					return nil
				}
				plan.Confirmed = true
				result, err = generate(cmd.Context(), app, cmd, projectID, plan, withStages)
			}
			if result != nil && len(result.Candidates) > 0 {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGeneration(result))
			}
			return err
		},
	}

	cmd.Flags().IntVar(&plan.FloorStart, "from", 1, "Primeiro andar")
	cmd.Flags().IntVar(&plan.FloorEnd, "to", 0, "Último andar")
	cmd.Flags().IntVar(&plan.UnitsPerFloor, "per-floor", 0, "Unidades por andar")
	cmd.Flags().BoolVar(&plan.Pad, "pad", false, "Posição com dois dígitos (ex.: 1001)")
	cmd.Flags().BoolVar(&withStages, "with-stages", false, "Aplica o modelo de etapas às unidades criadas")
	addYesFlag(cmd.Flags(), &yes)
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("per-floor")

	return cmd
}

func generate(ctx context.Context, app *App, cmd *cobra.Command, projectID string, plan bulk.FloorPlan, withStages bool) (*service.GenerationResult, error) {
	var result *service.GenerationResult
	err := runWithSpinner(ctx, app, cmd.ErrOrStderr(), "Gerando unidades...", func(ctx context.Context) error {
		var err error
		result, err = app.Units.GenerateByFloor(ctx, projectID, plan, withStages)
		return err
	})
	return result, err
}

func newUnitMissingCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "missing",
		Short: "Lista unidades sem nenhuma etapa ativa do modelo",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			units, err := app.Propagation.UnitsMissingStages(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if len(units) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Todas as unidades têm etapas"))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatUnitList(units))
			return nil
		},
	}
}

func newUnitFillCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Aplica o modelo de etapas às unidades que não têm nenhuma",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			var res *service.PropagationResult
			err = runWithSpinner(cmd.Context(), app, cmd.ErrOrStderr(), "Aplicando etapas...", func(ctx context.Context) error {
				var err error
				res, err = app.Propagation.ApplyTemplate(ctx, projectID)
				return err
			})
			if res != nil && res.Created > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("%d etapas criadas em %d unidades", res.Created, res.AffectedUnits))
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Nada a aplicar."))
			}
			return err
		},
	}
}

func newUnitSyncCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [unidade]",
		Short: "Recalcula progresso e situação a partir das etapas",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []string
			if len(args) == 1 {
				id, err := unitRef(cmd, app, *project, args[0])
				if err != nil {
					return err
				}
				ids = []string{id}
			} else {
				projectID, err := resolveProjectID(cmd.Context(), app, *project)
				if err != nil {
					return err
				}
				units, err := app.Units.List(cmd.Context(), projectID, listing.UnitFilter{}, listing.SortIdentifierAsc)
				if err != nil {
					return err
				}
				for _, u := range units {
					ids = append(ids, u.ID)
				}
			}
			for _, id := range ids {
				u, err := app.Units.SyncProgress(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s %s\n", u.Label(),
					formatter.RenderProgress(float64(u.Progress), 20), formatter.StatusPill(u.EffectiveStatus()))
			}
			return nil
		},
	}
}

// unitRef resolves a unit reference. Without --project only a full unit ID
// is accepted.
func unitRef(cmd *cobra.Command, app *App, project, input string) (string, error) {
	projectID := ""
	if project != "" {
		var err error
		if projectID, err = resolveProjectID(cmd.Context(), app, project); err != nil {
			return "", err
		}
	}
	return resolveUnitID(cmd.Context(), app, projectID, input)
}
