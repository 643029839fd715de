package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errVerifyFailed = errors.New("verify failed")

func newExercisesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exercises",
		Short: "Lista os exercícios e o progresso",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			statuses, err := a.Exercises(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(statuses))
			for _, st := range statuses {
				state := "bloqueado"
				switch {
				case st.Solved:
					state = "resolvido"
				case st.Unlocked:
					state = "disponível"
				}
				last := "-"
				if !st.Stats.LastPlayedTS.IsZero() {
					last = humanize.Time(st.Stats.LastPlayedTS)
				}
				rows = append(rows, []string{
					strconv.Itoa(st.Index + 1),
					st.Exercise.ID,
					st.Exercise.Title,
					strings.Join(st.Exercise.Mandatory, ", "),
					state,
					strconv.Itoa(st.Stats.Attempts),
					last,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"#", "ID", "Título", "Cláusulas", "Estado", "Tentativas", "Última"}, rows))
			prog := a.Session().Progress()
			fmt.Fprintf(out, "%d de %d resolvidos\n", prog.SolvedCount, prog.Total)
			return nil
		},
	}
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Confere se as queries esperadas rodam de forma determinística nos dois motores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			report := a.Verify(cmd.Context())
			out := cmd.OutOrStdout()
			for _, issue := range report.Issues {
				fmt.Fprintln(out, "FAIL "+issue.String())
			}
			if !report.OK() {
				fmt.Fprintf(out, "%d problema(s) em %d exercício(s)\n", len(report.Issues), report.Exercises)
				return errVerifyFailed
			}
			fmt.Fprintf(out, "ok: %d exercício(s) em %d motor(es)\n", report.Exercises, len(report.Engines))
			return nil
		},
	}
}
