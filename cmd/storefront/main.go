package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/terpenos/storefront/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Terpenos storefront cart and language service",
		Long: `storefront runs the Terpenos cart and language stores behind a
small JSON API, and inspects the state they persist.

Every visitor has a cart and a display language. Both are kept in a
key-value store (memory, file, redis, sql or s3) under per-visitor keys.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "Config file or directory containing storefront.json/storefront.yaml")

	rootCmd.AddCommand(
		serveCmd(&configPath),
		cartCmd(&configPath),
		translationsCmd(&configPath),
		versionCmd(),
	)

	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
