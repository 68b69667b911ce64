package cmd

import (
	"fmt"
	"strconv"

	"github.com/polarysfoundation/polarys-bio/modules/oracle"
	"github.com/polarysfoundation/polarys-bio/modules/params"
	"github.com/spf13/cobra"
)

var oracleCmd = &cobra.Command{
	Use:   "oracle <base|widths|align WIDTH|score ALIGNMENT>",
	Short: "Run one oracle query with the configured command",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  queryOracle,
}

func init() {
	params.SetFlags(oracleCmd.Flags(), params.DefaultConfig())
}

func queryOracle(cmd *cobra.Command, args []string) error {
	cfg, err := params.LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	o := oracle.FromParams(cfg.Chain.BioEngine, oracle.WithLogger(logger))
	if err := o.Build(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch args[0] {
	case oracle.OpBase:
		base, err := o.Base(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, base)
	case oracle.OpWidths:
		widths, err := o.Widths(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, widths)
	case oracle.OpAlign:
		if len(args) != 2 {
			return fmt.Errorf("align needs a width")
		}
		width, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid width %q: %w", args[1], err)
		}
		aln, err := o.Align(ctx, width)
		if err != nil {
			return err
		}
		fmt.Fprint(out, aln)
	case oracle.OpScore:
		if len(args) != 2 {
			return fmt.Errorf("score needs an alignment")
		}
		score, err := o.Score(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, score)
	default:
		return fmt.Errorf("unknown oracle query %q", args[0])
	}
	return nil
}
