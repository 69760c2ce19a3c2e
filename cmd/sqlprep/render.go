package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/sqlprep/dialect"
	"github.com/Konsultn-Engineering/sqlprep/prepare"
)

var (
	renderDialect      string
	renderPrefixes     []string
	renderStripSlashes bool
	renderStrict       bool
)

var renderCmd = &cobra.Command{
	Use:   "render TEMPLATE [ARG...]",
	Short: "Substitute arguments into a template without connecting",
	Example: `  sqlprep render "SELECT * FROM %t WHERE id = %d" users 42 --prefix wp_
  sqlprep render "SELECT * FROM %1t" posts --prefix wp_ --prefix archive_`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderDialect, "dialect", "d", "mysql", "Escaping dialect: mysql, tidb, postgres or sqlite")
	renderCmd.Flags().StringArrayVarP(&renderPrefixes, "prefix", "p", nil, "Table prefix; repeat to build an indexed list")
	renderCmd.Flags().BoolVar(&renderStripSlashes, "strip-slashes", false, "Strip backslash escaping from string arguments")
	renderCmd.Flags().BoolVar(&renderStrict, "strict", false, "Fail when placeholders and arguments do not pair up")
}

func runRender(cmd *cobra.Command, args []string) error {
	d, err := dialect.ByName(renderDialect)
	if err != nil {
		return err
	}

	var prefix prepare.Prefix
	switch len(renderPrefixes) {
	case 0:
	case 1:
		prefix = prepare.SinglePrefix(renderPrefixes[0])
	default:
		prefix = prepare.PrefixList(renderPrefixes...)
	}

	p := prepare.New(
		prepare.WithPrefix(prefix),
		prepare.WithEscaper(d),
		prepare.WithStripSlashes(renderStripSlashes),
	)

	values := toAny(args[1:])
	var out string
	if renderStrict {
		out, err = p.SubstituteStrict(args[0], values)
		if err != nil {
			return err
		}
	} else {
		out = p.Substitute(args[0], values)
	}

	logger.Debug("template rendered", zap.String("dialect", d.Name()), zap.Int("args", len(values)))
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func toAny(args []string) []any {
	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a
	}
	return values
}
