package main

import (
	"os"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/internal/tui"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/spf13/cobra"
)

var tryCmd = &cobra.Command{
	Use:   "try",
	Short: "Run the demo application in the terminal",
	Long: `Runs the demo in-process and prints every page. Type a token to press a
button, token=value to fill a field, "back" to revisit the previous page and
"quit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		opts := append(appOptions(cfg, logger, nil), arbor.WithDocument(render.NewMarkdownDocument))
		app, err := arbor.New(demo.Root, opts...)
		if err != nil {
			return err
		}
		defer app.Close()

		var browserOpts []tui.Option
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(cmd.OutOrStdout())
			if fn, err := tui.NewRenderer(); err == nil {
				browserOpts = append(browserOpts, tui.WithRenderer(fn))
			}
		}
		return tui.NewBrowser(app, cmd.InOrStdin(), cmd.OutOrStdout(), browserOpts...).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(tryCmd)
}
