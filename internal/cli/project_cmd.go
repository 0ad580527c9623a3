package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/canteiro/internal/cli/formatter"
	"github.com/alexanderramin/canteiro/internal/domain"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"obra"},
		Short:   "Gerencia obras",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
		newProjectUpdateCmd(app),
		newProjectRemoveCmd(app),
		newProjectSummaryCmd(app),
	)

	return cmd
}

type projectFields struct {
	name, client, city, address, description string
}

func (f *projectFields) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Nome da obra")
	cmd.Flags().StringVar(&f.client, "client", "", "Cliente")
	cmd.Flags().StringVar(&f.city, "city", "", "Cidade")
	cmd.Flags().StringVar(&f.address, "address", "", "Endereço")
	cmd.Flags().StringVar(&f.description, "description", "", "Descrição")
}

// apply copies the flags the user set onto p.
func (f *projectFields) apply(cmd *cobra.Command, p *domain.Project) {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("name", &p.Name, f.name)
	set("client", &p.ClientName, f.client)
	set("city", &p.City, f.city)
	set("address", &p.Address, f.address)
	set("description", &p.Description, f.description)
}

func newProjectAddCmd(app *App) *cobra.Command {
	var fields projectFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Cria uma obra",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &domain.Project{}
			fields.apply(cmd, p)
			if err := app.Projects.Create(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Obra %s criada [%s]", p.Name, p.ShortID()))
			return nil
		},
	}

	fields.register(cmd)
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista obras com o progresso de cada uma",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.Projects.List(cmd.Context(), flags.query, flags.sort.key)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(items))
			return nil
		},
	}

	flags.register(cmd.Flags(), false)

	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "show <obra>",
		Short: "Mostra a obra, suas etapas e unidades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveProjectID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			view, err := app.Projects.Overview(cmd.Context(), id, flags.filter(), flags.sort.key)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectView(view))
			return nil
		},
	}

	flags.register(cmd.Flags(), true)

	return cmd
}

func newProjectUpdateCmd(app *App) *cobra.Command {
	var fields projectFields

	cmd := &cobra.Command{
		Use:   "update <obra>",
		Short: "Altera os dados de uma obra",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveProjectID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fields.apply(cmd, p)
			if err := app.Projects.Update(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Obra %s atualizada", p.Name))
			return nil
		},
	}

	fields.register(cmd)

	return cmd
}

func newProjectRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <obra>",
		Short: "Exclui a obra com todas as unidades, etapas e fotos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveProjectID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			ok, err := app.confirm(fmt.Sprintf("Excluir a obra %s e tudo o que ela contém?", p.Name), yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Projects.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Obra %s excluída", p.Name))
			return nil
		},
	}

	addYesFlag(cmd.Flags(), &yes)

	return cmd
}

func newProjectSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <obra>",
		Short: "Resume a situação das unidades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveProjectID(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			sum, err := app.Projects.Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(sum))
			return nil
		},
	}
}
