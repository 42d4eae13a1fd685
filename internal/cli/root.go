// Package cli implements the restc command line client.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/restkit/version"
)

// options holds the flags shared by every command.
type options struct {
	configFile string
	endpoint   string
	baseURL    string
	headers    []string
	query      []string
	data       string
	raw        bool
	envelope   string
	timeout    time.Duration
	bearer     string
	noColor    bool
	verbose    bool
}

// NewRootCommand builds the restc command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "restc",
		Short: "A terminal REST client built on restkit",
		Long: `restc sends REST calls through a restkit endpoint: bodies are encoded by
the first serializer that accepts them, responses are decoded by content type,
and failures are reported with their error kind.`,
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: discovered config.yml)")
	flags.StringVarP(&opts.endpoint, "endpoint", "e", "", "named endpoint from the config file")
	flags.StringVarP(&opts.baseURL, "base-url", "b", "", "base URL resource paths are appended to")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, `request header "Key: Value" (repeatable)`)
	flags.StringArrayVarP(&opts.query, "query", "q", nil, "query parameter key=value (repeatable)")
	flags.StringVar(&opts.envelope, "envelope", "", `decode only the JSON at this path, e.g. "data"`)
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "request timeout (default from config, 30s)")
	flags.StringVar(&opts.bearer, "bearer", "", "bearer token sent in the Authorization header")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print the request line, response headers and debug logs")

	root.AddCommand(
		newRequestCommand(opts, "get", false),
		newRequestCommand(opts, "delete", false),
		newRequestCommand(opts, "post", true),
		newRequestCommand(opts, "put", true),
		newRequestCommand(opts, "patch", true),
		newHealthCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}
