// Command gdsctl is a command line client for the graph data service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/gds-client/internal/app"
	"github.com/samvad-hq/gds-client/internal/config"
	"github.com/samvad-hq/gds-client/internal/logger"
	"github.com/samvad-hq/gds-client/pkg/gds"
)

// newVerboseLogger builds the --verbose logger; it writes to stderr.
var newVerboseLogger = func() (*zap.Logger, error) { return zap.NewDevelopment() }

type rootFlags struct {
	url      string
	username string
	password string
	verbose  bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "gdsctl",
		Short:         "CLI client for the graph data service index and schema API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&flags.url, "url", "u", "", "API root, e.g. https://host/<id>/g (default $APIURL)")
	root.PersistentFlags().StringVar(&flags.username, "username", "", "Basic auth user (default $USERNAME)")
	root.PersistentFlags().StringVar(&flags.password, "password", "", "Basic auth password (default $PASSWORD)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(newIndexCmd(flags, out), newSchemaCmd(flags, out), newApplyCmd(flags, out))
	return root
}

// session is what every subcommand needs once flags are parsed.
type session struct {
	cfg    *config.Config
	client *gds.Client
	log    logger.Logger
	sync   func() error
}

// close flushes the verbose logger, if any.
func (s *session) close() {
	if s.sync != nil {
		_ = s.sync()
	}
}

func (f *rootFlags) open() (*session, error) {
	cfg, err := config.LoadWithOverrides(map[string]any{
		"apiurl":   f.url,
		"username": f.username,
		"password": f.password,
	})
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, log: logger.NopLogger{}}
	if f.verbose {
		z, err := newVerboseLogger()
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		s.log = logger.New(z)
		s.sync = z.Sync
	}

	s.client, err = app.NewClient(cfg, s.log, nil)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.cfg.RequestTimeout*time.Duration(max(1, s.cfg.MaxAttempts)))
}

func printJSON(out io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}

// readDefinition decodes a YAML (or JSON) file into v.
func readDefinition(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
