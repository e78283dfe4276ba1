// Package cli is the medvault command tree.
//
// Configuration flags are the short flags of the config package (-c, -m,
// -o, ...) and may appear anywhere on the command line; command flags are
// long-only.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/dmitrijs2005/medvault/internal/app"
	"github.com/dmitrijs2005/medvault/internal/config"
	"github.com/spf13/cobra"
)

// TokenEnv names the environment variable read when --token is not given.
const TokenEnv = "MEDVAULT_TOKEN"

var errNoToken = errors.New("no identity token: pass --token or set " + TokenEnv)

type runner struct {
	args    []string
	stdout  io.Writer
	appOpts []app.Option

	token string
	app   *app.App
}

// Execute runs the command line args (without the program name).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...app.Option) error {
	r := &runner{args: args, stdout: stdout, appOpts: opts}
	root := r.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer func() {
		if r.app != nil {
			_ = r.app.Close()
		}
	}()

	return root.ExecuteContext(ctx)
}

func (r *runner) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "medvault",
		Short: "Encrypted storage for medical documents",
		Long: `medvault uploads medical documents to object storage, encrypting PDFs and
images with a per-user key first, and turns stored records back into
viewable resources.`,
		SilenceUsage:      true,
		PersistentPreRunE: r.setup,
	}
	root.PersistentFlags().StringVar(&r.token, "token", "", "identity token (default $"+TokenEnv+")")

	root.AddCommand(
		r.uploadCommand(),
		r.listCommand(),
		r.viewCommand(),
		r.deleteCommand(),
		r.serveCommand(),
		r.tokenCommand(),
	)

	allowConfigFlags(root)
	return root
}

// allowConfigFlags lets the short config flags through cobra's parser.
func allowConfigFlags(cmd *cobra.Command) {
	cmd.FParseErrWhitelist = cobra.FParseErrWhitelist{UnknownFlags: true}
	for _, c := range cmd.Commands() {
		allowConfigFlags(c)
	}
}

func (r *runner) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(r.args)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg, r.appOpts...)
	if err != nil {
		return err
	}
	r.app = a
	return nil
}

// userID resolves the caller through the identity provider.
func (r *runner) userID() (string, error) {
	token := r.token
	if token == "" {
		token = os.Getenv(TokenEnv)
	}
	if token == "" {
		return "", errNoToken
	}
	return r.app.Tokens.UserID(token)
}
