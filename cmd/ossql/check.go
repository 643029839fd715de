package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ossql/internal/grading"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var errNotAccepted = errors.New("submission not accepted")

type checkOptions struct {
	exercise string
	query    string
	file     string
	json     bool
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Avalia uma query para um exercício",
		Long: "Avalia uma query para um exercício e imprime o resultado.\n" +
			"A query vem de --query, de --file ou da entrada padrão. O status de saída é 1 quando a query não é aceita.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.exercise, "exercise", "", "exercise id")
	cmd.Flags().StringVar(&opts.query, "query", "", "SQL to evaluate")
	cmd.Flags().StringVar(&opts.file, "file", "", "read SQL from this file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print a grader_result JSON document")
	_ = cmd.MarkFlagRequired("exercise")
	cmd.MarkFlagsMutuallyExclusive("query", "file")
	return cmd
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions) error {
	query, err := readQuery(cmd, opts)
	if err != nil {
		return err
	}

	a, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// The session already starts on --engine or OSSQL_ENGINE.
	res, err := a.Check(cmd.Context(), opts.exercise, "", query)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printResult(out, res)
	}
	if !res.Passed {
		return errNotAccepted
	}
	return nil
}

func readQuery(cmd *cobra.Command, opts *checkOptions) (string, error) {
	switch {
	case opts.query != "":
		return opts.query, nil
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read query from stdin: %w", err)
		}
		return string(data), nil
	}
}

func printResult(w io.Writer, res grading.Result) {
	status := "REPROVADA"
	if res.Passed {
		status = "ACEITA"
	}
	fmt.Fprintf(w, "%s  %s [%s] %s (%d ms)\n", status, res.ExerciseID, res.Engine, res.Outcome, res.DurationMS)
	if len(res.Missing) > 0 {
		fmt.Fprintf(w, "cláusulas faltando: %s\n", strings.Join(res.Missing, ", "))
	}
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
	if len(res.Columns) == 0 {
		return
	}
	rows := make([][]string, len(res.Rows))
	for i, row := range res.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellText(v)
		}
		rows[i] = cells
	}
	fmt.Fprintln(w, renderTable(res.Columns, rows))
	fmt.Fprintf(w, "%d linha(s)\n", len(rows))
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func cellText(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
