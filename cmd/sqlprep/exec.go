package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/sqlprep"
	"github.com/Konsultn-Engineering/sqlprep/dialect"
	"github.com/Konsultn-Engineering/sqlprep/engine"
)

var execCmd = &cobra.Command{
	Use:   "exec TEMPLATE [ARG...]",
	Short: "Render a template and run it against the configured store",
	Example: `  sqlprep exec "SELECT id, name FROM %t WHERE name = %s" users "O'Brien"
  SQLPREP_DRIVER=postgres SQLPREP_DATABASE=shop sqlprep exec "DELETE FROM %t WHERE id = %d" carts 7`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := sqlprep.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	values := toAny(args[1:])
	query := e.Prepare(args[0], values...)
	if cfg.Strict {
		if query, err = e.PrepareStrict(args[0], values...); err != nil {
			return err
		}
	}

	res, err := e.Query(ctx, query, "")
	if err != nil {
		return err
	}
	logger.Debug("statement finished", zap.Stringer("kind", res.Kind), zap.Int64("value", res.Value()))

	if !res.Kind.ReturnsRows() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", res.Kind, res.Value())
		return nil
	}
	return printRows(cmd.OutOrStdout(), e, e.Dialect())
}

// printRows writes the main handle's rows as SQL literals of dialect d.
func printRows(w io.Writer, e *engine.Engine, d dialect.Dialect) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := false
	for {
		row, ok := e.FetchRow("", true)
		if !ok {
			break
		}
		if !header {
			fmt.Fprintln(tw, strings.Join(row.Columns, "\t"))
			header = true
		}
		cells := make([]string, len(row.Values))
		for i, v := range row.Values {
			cells[i] = d.RenderValue(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
