package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/canteiro/internal/cli/formatter"
	"github.com/alexanderramin/canteiro/internal/service"
)

func newPhotoCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:     "photo",
		Aliases: []string{"foto"},
		Short:   "Fotos das etapas de unidade",
		Long:    "Fotos das etapas de unidade. " + stepRefHelp,
	}
	addProjectFlag(cmd.PersistentFlags(), &project)

	cmd.AddCommand(
		newPhotoAddCmd(app, &project),
		newPhotoListCmd(app, &project),
		newPhotoRemoveCmd(app),
	)

	return cmd
}

func newPhotoAddCmd(app *App, project *string) *cobra.Command {
	var caption, kind string

	cmd := &cobra.Command{
		Use:   "add <etapa> <arquivo>",
		Short: "Anexa uma imagem a uma etapa da unidade",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			photo, err := app.UnitStages.AddPhoto(cmd.Context(), id, service.PhotoUpload{
				Filename: filepath.Base(args[1]),
				Caption:  caption,
				Kind:     kind,
				Body:     f,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Foto %s anexada (%s)",
				formatter.TruncID(photo.ID), formatter.HumanBytes(photo.Size)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&caption, "caption", "c", "", "Legenda")
	cmd.Flags().StringVar(&kind, "kind", "", "Tipo da foto (ex.: antes, depois)")

	return cmd
}

func newPhotoListCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <etapa>",
		Short: "Lista as fotos com links temporários",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := stepRef(cmd, app, *project, args[0])
			if err != nil {
				return err
			}
			views, err := app.UnitStages.ListPhotos(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPhotos(views))
			return nil
		},
	}
}

func newPhotoRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id da foto>",
		Short: "Exclui uma foto",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := app.confirm("Excluir a foto?", yes)
			if err != nil || !ok {
				return err
			}
			if err := app.UnitStages.DeletePhoto(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("Foto excluída"))
			return nil
		},
	}

	addYesFlag(cmd.Flags(), &yes)

	return cmd
}
