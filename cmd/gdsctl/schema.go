package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

func newSchemaCmd(flags *rootFlags, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Read or replace the graph schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.close()
			ctx, cancel := s.context(cmd)
			defer cancel()
			env, err := s.client.Schema().Get(ctx)
			if err != nil {
				return err
			}
			return printSchema(out, env)
		},
	})

	var file string
	set := &cobra.Command{
		Use:   "set",
		Short: "Apply a schema definition file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var def gds.SchemaDefinition
			if err := readDefinition(file, &def); err != nil {
				return err
			}
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.close()
			ctx, cancel := s.context(cmd)
			defer cancel()
			env, err := s.client.Schema().Set(ctx, def)
			if err != nil {
				return err
			}
			return printSchema(out, env)
		},
	}
	set.Flags().StringVarP(&file, "file", "f", "", "Schema definition (YAML or JSON)")
	_ = set.MarkFlagRequired("file")
	cmd.AddCommand(set)

	return cmd
}

// printSchema prints the applied schema, or an empty one when the service
// reports none.
func printSchema(out io.Writer, env *gds.SchemaEnvelope) error {
	applied, _ := env.Applied()
	return printJSON(out, applied)
}
