package version

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand to root that also lists
// the package formats the builder can render.
func AttachCobraVersionCommand(root *cobra.Command, formats ...string) {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the installer builder version and the package formats it renders.",
		Long: "Print the installer builder version with its commit and build time, followed by the\n" +
			"package formats it renders. The version printed with --short is the one recorded as\n" +
			"tool_version in every build receipt.",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			if short {
				_, _ = fmt.Fprintln(out, Short())

				return
			}

			_, _ = fmt.Fprintln(out, Full())

			if len(formats) > 0 {
				_, _ = fmt.Fprintf(out, "package formats: %s\n", strings.Join(formats, ", "))
			}
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version recorded in build receipts")
	root.AddCommand(cmd)
}
