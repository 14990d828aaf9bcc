package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/artifactstore/bootstrap"
	"github.com/kbukum/artifactstore/logger"
	"github.com/kbukum/artifactstore/manifest"
)

// formatValue adapts manifest.Format to a pflag.Value so bad names fail at
// flag parsing.
type formatValue manifest.Format

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	parsed, err := manifest.ParseFormat(s)
	if err != nil {
		return err
	}
	*f = formatValue(parsed)
	return nil
}

func (f *formatValue) Type() string { return "format" }

func newIngestCmd(o *rootOptions) *cobra.Command {
	var (
		prefix string
		out    string
	)
	format := formatValue(manifest.FormatJSON)

	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Store every file under a directory and write its manifest",
		Long: `Ingest walks <dir> in lexical order and stores each regular file at
<prefix>/<relative path>. The manifest is written only when every file
was stored; a failure reports the first error and writes nothing.`,
		Example: `  artifactstore ingest ./public --prefix docs/v1
  artifactstore ingest ./public -p site --manifest manifest.yaml --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			return o.run(cmd, func(ctx context.Context, app *bootstrap.App) error {
				m, err := app.Store().StoreAll(ctx, root, prefix)
				if err != nil {
					return err
				}
				app.Logger.Info("Ingest complete", logger.Fields(
					"root", root,
					"prefix", prefix,
					"files", len(m),
				))
				return writeManifest(o, cmd.OutOrStdout(), out, m, manifest.Format(format))
			})
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "key prefix prepended to every stored path")
	cmd.Flags().StringVarP(&out, "manifest", "m", "", "write the manifest to this file instead of stdout")
	cmd.Flags().VarP(&format, "format", "f", "manifest encoding: json, cbor or yaml")
	return cmd
}

func writeManifest(o *rootOptions, stdout io.Writer, out string, m manifest.Manifest, format manifest.Format) error {
	if out == "" {
		return manifest.Encode(stdout, m, format)
	}
	f, err := o.fs.Create(out)
	if err != nil {
		return err
	}
	if err := manifest.Encode(f, m, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
