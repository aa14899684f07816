package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

func newIndexCmd(flags *rootFlags, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage graph indexes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List index names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.close()
			ctx, cancel := s.context(cmd)
			defer cancel()
			names, err := s.client.Index().List(ctx)
			if err != nil {
				return err
			}
			return printJSON(out, names)
		},
	})

	cmd.AddCommand(objectCmd(flags, out, "get NAME", "Show an index", (*gds.IndexService).Get))
	cmd.AddCommand(objectCmd(flags, out, "status NAME", "Show the status of an index", (*gds.IndexService).Status))
	cmd.AddCommand(objectCmd(flags, out, "delete NAME", "Delete an index", (*gds.IndexService).Delete))

	var file string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an index from a definition file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var def gds.IndexDefinition
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
			data, err := s.client.Index().Create(ctx, def)
			if err != nil {
				return err
			}
			return printJSON(out, data)
		},
	}
	create.Flags().StringVarP(&file, "file", "f", "", "Index definition (YAML or JSON)")
	_ = create.MarkFlagRequired("file")
	cmd.AddCommand(create)

	return cmd
}

type objectCall func(*gds.IndexService, context.Context, string) (gds.Object, error)

// objectCmd builds a single-name command printing the returned object.
func objectCmd(flags *rootFlags, out io.Writer, use, short string, call objectCall) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.open()
			if err != nil {
				return err
			}
			defer s.close()
			ctx, cancel := s.context(cmd)
			defer cancel()
			data, err := call(s.client.Index(), ctx, args[0])
			if gds.IsNotFound(err) {
				return errors.New("index " + args[0] + " not found")
			}
			if err != nil {
				return err
			}
			return printJSON(out, data)
		},
	}
}
