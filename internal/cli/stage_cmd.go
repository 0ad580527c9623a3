package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/canteiro/internal/cli/formatter"
	"github.com/alexanderramin/canteiro/internal/domain"
)

func newStageCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:     "stage",
		Aliases: []string{"etapa"},
		Short:   "Gerencia o modelo de etapas de uma obra",
	}
	addProjectFlag(cmd.PersistentFlags(), &project)

	cmd.AddCommand(
		newStageAddCmd(app, &project),
		newStageBulkAddCmd(app, &project),
		newStageListCmd(app, &project),
		newStageRenameCmd(app, &project),
		newStageMoveCmd(app, &project),
		newStageArchiveCmd(app, &project, false),
		newStageArchiveCmd(app, &project, true),
	)

	return cmd
}

func newStageAddCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <nome...>",
		Short: "Adiciona uma etapa ao fim do modelo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			st, err := app.Stages.Create(cmd.Context(), projectID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa %s adicionada na posição %d", st.Name, st.OrderIndex))
			return nil
		},
	}
}

func newStageBulkAddCmd(app *App, project *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "bulk-add [nomes...]",
		Short: "Adiciona várias etapas de uma vez, na ordem dada",
		Long:  "Adiciona várias etapas de uma vez. Com --file, lê um nome por linha; linhas vazias e iniciadas por # são ignoradas.",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			names := args
			if file != "" {
				fromFile, err := readStageNames(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				names = append(names, fromFile...)
			}
			if len(names) == 0 {
				return fmt.Errorf("informe os nomes das etapas ou --file")
			}
			stages, err := app.Stages.BulkCreate(cmd.Context(), projectID, names)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("%d etapas adicionadas", len(stages)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Arquivo com um nome por linha (- para a entrada padrão)")

	return cmd
}

// readStageNames reads one name per line from path, or from stdin when path
// is "-".
func readStageNames(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, sc.Err()
}

func newStageListCmd(app *App, project *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista o modelo de etapas",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProjectID(cmd.Context(), app, *project)
			if err != nil {
				return err
			}
			stages, err := app.Stages.List(cmd.Context(), projectID, all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStageList(stages))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Inclui etapas arquivadas")

	return cmd
}

func newStageRenameCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <etapa> <novo nome...>",
		Short: "Renomeia uma etapa do modelo",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stageRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			st, err := app.Stages.Rename(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa renomeada para %s", st.Name))
			return nil
		},
	}
}

func newStageMoveCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "move <etapa> <up|down>",
		Short: "Move uma etapa uma posição no modelo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := parseDirection(args[1])
			if err != nil {
				return err
			}
			id, err := stageRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			st, err := app.Stages.Move(cmd.Context(), id, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa %s agora na posição %d", st.Name, st.OrderIndex))
			return nil
		},
	}
}

func newStageArchiveCmd(app *App, project *string, reactivate bool) *cobra.Command {
	use, short := "archive <etapa>", "Arquiva uma etapa; as unidades mantêm suas cópias"
	if reactivate {
		use, short = "reactivate <etapa>", "Reativa uma etapa arquivada"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stageRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			var st *domain.Stage
			if reactivate {
				st, err = app.Stages.Reactivate(cmd.Context(), id)
			} else {
				st, err = app.Stages.Archive(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			if st.IsActive {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa %s reativada", st.Name))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Etapa %s arquivada", st.Name))
			}
			return nil
		},
	}
}

func stageRef(cmd *cobra.Command, app *App, project, input string) (string, error) {
	projectID, err := resolveProjectID(cmd.Context(), app, project)
	if err != nil {
		return "", err
	}
	return resolveStageID(cmd.Context(), app, projectID, input)
}
