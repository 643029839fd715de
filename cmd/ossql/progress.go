package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProgressCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Exporta ou importa o progresso",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "export FILE",
			Short: "Grava o progresso atual em FILE",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := root.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.ExportProgress(args[0]); err != nil {
					return err
				}
				prog := a.Session().Progress()
				fmt.Fprintf(cmd.OutOrStdout(), "progresso exportado: %d de %d\n", prog.SolvedCount, prog.Total)
				return nil
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Substitui o progresso pelo conteúdo de FILE",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := root.open(cmd)
				if err != nil {
					return err
				}
				defer a.Close()
				if err := a.ImportProgress(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("import %s: %w", args[0], err)
				}
				prog := a.Session().Progress()
				fmt.Fprintf(cmd.OutOrStdout(), "progresso importado: %d de %d\n", prog.SolvedCount, prog.Total)
				return nil
			},
		},
	)
	return cmd
}
