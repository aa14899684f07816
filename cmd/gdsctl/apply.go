package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/gds-client/internal/reconciler"
	"github.com/samvad-hq/gds-client/pkg/manifest"
)

type applyResult struct {
	Applied reconciler.Report  `json:"applied"`
	Pruned  *reconciler.Report `json:"pruned,omitempty"`
}

func newApplyCmd(flags *rootFlags, out io.Writer) *cobra.Command {
	var (
		file  string
		prune []string
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge schema and indexes on a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := manifest.Load(file)
			if err != nil {
				return err
			}
			m.Prune = append(m.Prune, prune...)
			if err := m.Validate(); err != nil {
				return err
			}

			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.close()
			deps := reconciler.ForClient(s.client)
			deps.Log = s.log
			svc := reconciler.NewService(deps, reconciler.Options{MaxAttempts: s.cfg.MaxAttempts})

			ctx := cmd.Context()
			var res applyResult
			res.Applied, err = svc.Apply(ctx, m)
			if err != nil {
				_ = printJSON(out, res)
				return err
			}
			if len(m.Prune) > 0 {
				rep, err := svc.Prune(ctx, m.Prune)
				res.Pruned = &rep
				if err != nil {
					_ = printJSON(out, res)
					return err
				}
			}
			return printJSON(out, res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Manifest (YAML or JSON)")
	cmd.Flags().StringSliceVar(&prune, "prune", nil, "Index names to delete after applying")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
