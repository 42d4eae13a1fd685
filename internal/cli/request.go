package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/endpoint"
	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/provider"
	"github.com/kbukum/restkit/serializer"
	"github.com/kbukum/restkit/transport"
)

func newRequestCommand(opts *options, method string, withBody bool) *cobra.Command {
	upper := strings.ToUpper(method)
	cmd := &cobra.Command{
		Use:   method + " PATH",
		Short: fmt.Sprintf("Send a %s request to PATH under the base URL", upper),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, opts, upper, args[0])
		},
	}
	if withBody {
		cmd.Flags().StringVarP(&opts.data, "data", "d", "", "request body as JSON, or @file to read it from a file")
		cmd.Flags().BoolVar(&opts.raw, "raw", false, "send --data as plain text instead of parsing it as JSON")
	}
	return cmd
}

func runRequest(cmd *cobra.Command, opts *options, method, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.noColor, opts.verbose)

	err := execute(ctx, cmd, opts, out, method, path)
	if err != nil {
		out.failure(err)
	}
	return err
}

func execute(ctx context.Context, cmd *cobra.Command, opts *options, out *printer, method, path string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg, opts)

	epCfg, err := cfg.endpointConfig(opts)
	if err != nil {
		return err
	}
	rec, err := newRecorder(epCfg, log)
	if err != nil {
		return err
	}
	e, err := endpoint.New(epCfg,
		endpoint.WithTransport(rec),
		endpoint.WithSerializers(serializers(opts)...),
		endpoint.WithLogger(log),
	)
	if err != nil {
		_ = rec.Close(ctx)
		return err
	}
	defer func() { _ = e.Close(context.WithoutCancel(ctx)) }()

	command, err := buildCommand(opts, method, path)
	if err != nil {
		return err
	}

	client, shutdown, err := newClient(ctx, cfg, e, log)
	if err != nil {
		return err
	}
	defer shutdown()

	base := e.BaseURL()
	base.RawQuery = ""
	out.request(method, strings.TrimRight(base.String(), "/")+"/"+strings.TrimLeft(path, "/"))

	result, err := client.Execute(ctx, command)
	out.status(rec.Last())
	if err != nil {
		return err
	}
	return out.body(result)
}

func loadConfig(opts *options) (*Config, error) {
	var loaderOpts []config.LoaderOption
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	cfg := &Config{}
	if err := config.Load(appName, cfg, loaderOpts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *Config, opts *options) *logger.Logger {
	logCfg := cfg.Logging
	if opts.verbose {
		logCfg.Level = "debug"
	}
	if opts.noColor {
		logCfg.NoColor = true
	}
	log := logger.NewWithWriter(&logCfg, cfg.Name, cmd.ErrOrStderr())
	logger.SetGlobalLogger(log)
	return log
}

func newRecorder(cfg endpoint.Config, log *logger.Logger) (*recorder, error) {
	t, err := transport.New(cfg.Transport,
		transport.WithInterceptors(transport.RequestID(), transport.TracePropagation()),
		transport.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return &recorder{inner: t}, nil
}

// serializers lists the write side first: raw text, then JSON. Reading
// falls through to YAML, plain text and finally raw bytes for anything else.
func serializers(opts *options) []serializer.Serializer {
	var jsonOpts []serializer.JSONOption
	if opts.envelope != "" {
		jsonOpts = append(jsonOpts, serializer.WithEnvelope(opts.envelope))
	}
	var list []serializer.Serializer
	if opts.raw {
		list = append(list, serializer.NewStringFor("text/plain"))
	}
	list = append(list,
		serializer.NewJSON(jsonOpts...),
		serializer.NewYAML(),
		serializer.NewStringFor("text/*"),
		serializer.NewBytes("*/*"),
	)
	return list
}

func buildCommand(opts *options, method, path string) (*endpoint.Command, error) {
	var reqOpts []endpoint.RequestOption
	for _, h := range opts.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.InvalidCommand(fmt.Sprintf("malformed header %q, want \"Key: Value\"", h))
		}
		reqOpts = append(reqOpts, endpoint.WithHeader(strings.TrimSpace(k), strings.TrimSpace(v)))
	}
	for _, q := range opts.query {
		k, v, ok := strings.Cut(q, "=")
		if !ok || k == "" {
			return nil, errors.InvalidCommand(fmt.Sprintf("malformed query parameter %q, want key=value", q))
		}
		reqOpts = append(reqOpts, endpoint.WithQueryParam(k, v))
	}

	body, err := requestBody(opts)
	if err != nil {
		return nil, err
	}
	return endpoint.NewCommand(path, method, body, serializer.TypeOf[any](), reqOpts...)
}

// requestBody returns nil when no data was given so that no entity is sent.
func requestBody(opts *options) (any, error) {
	if opts.data == "" {
		return nil, nil
	}
	data := opts.data
	if file, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.InvalidCommand(fmt.Sprintf("reading %s: %v", file, err))
		}
		data = string(b)
	}
	if opts.raw {
		return data, nil
	}
	var body any
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return nil, errors.Serialization("request data is not valid JSON, use --raw to send text", err)
	}
	return body, nil
}

// newClient wraps the endpoint with the logging, tracing and metrics
// middleware around the configured resilience policies. The returned
// function flushes telemetry.
func newClient(ctx context.Context, cfg *Config, e *endpoint.Endpoint, log *logger.Logger) (provider.RequestResponse[*endpoint.Command, any], func(), error) {
	type mw = provider.Middleware[*endpoint.Command, any]
	var tracing, metering mw
	shutdown := func() {}

	if cfg.Observability != nil {
		tp, err := observability.InitTracer(ctx, *cfg.Observability)
		if err != nil {
			return nil, nil, err
		}
		mp, err := observability.InitMeter(ctx, *cfg.Observability)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, nil, err
		}
		metrics, err := observability.NewClientMetrics(observability.Meter(cfg.Name))
		if err != nil {
			_ = tp.Shutdown(ctx)
			_ = mp.Shutdown(ctx)
			return nil, nil, err
		}
		tracing = provider.WithTracing[*endpoint.Command, any](cfg.Name)
		metering = provider.WithMetrics[*endpoint.Command, any](metrics)
		shutdown = func() {
			flush := context.WithoutCancel(ctx)
			if err := tp.Shutdown(flush); err != nil {
				log.Warn("tracer shutdown failed", logger.Fields("error", err.Error()))
			}
			if err := mp.Shutdown(flush); err != nil {
				log.Warn("meter shutdown failed", logger.Fields("error", err.Error()))
			}
		}
	}

	client := provider.Apply(endpoint.Typed[any](e),
		provider.WithLogging[*endpoint.Command, any](log),
		tracing,
		metering,
		provider.Resilient[*endpoint.Command, any](cfg.Resilience),
	)
	return client, shutdown, nil
}
