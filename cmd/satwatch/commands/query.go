package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/RMahshie/satscan/internal/tabular"
)

// NewStatusCommand creates the status subcommand
func NewStatusCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <scanId>",
		Short: "Show a scan's result folder status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanID, err := scanIDArg(args[0])
			if err != nil {
				return err
			}

			status, err := opts.client().OutputStatus(cmd.Context(), scanID)
			if err != nil {
				return err
			}
			renderStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

// NewSpectrumCommand creates the spectrum subcommand
func NewSpectrumCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "spectrum <scanId>",
		Short: "Summarize a scan's parsed spectrum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanID, err := scanIDArg(args[0])
			if err != nil {
				return err
			}

			spec, err := opts.client().Spectrum(cmd.Context(), scanID)
			if err != nil {
				return err
			}
			renderSpectrum(cmd.OutOrStdout(), spec, time.Now())
			return nil
		},
	}
}

// NewTableCommand creates the table subcommand
func NewTableCommand(opts *Options) *cobra.Command {
	var (
		columns []string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "table <scanId>",
		Short: "Print a scan's parsed .tmptxt table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanID, err := scanIDArg(args[0])
			if err != nil {
				return err
			}

			if all {
				columns = nil
			}
			body, err := opts.client().Table(cmd.Context(), scanID, columns)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&columns, "columns", tabular.DefaultColumns, "columns to keep, in order")
	cmd.Flags().BoolVar(&all, "all", false, "print every column")

	return cmd
}
