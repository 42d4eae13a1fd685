package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/endpoint"
	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/serializer"
	"github.com/kbukum/restkit/version"
)

func newHealthCommand(opts *options) *cobra.Command {
	var probe string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report the health of every configured endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.noColor, opts.verbose)
			err := runHealth(ctx, cmd, opts, out, probe)
			if err != nil {
				out.failure(err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&probe, "probe", "", "GET this path on every endpoint; a failed call marks it unhealthy")
	return cmd
}

func runHealth(ctx context.Context, cmd *cobra.Command, opts *options, out *printer, probe string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg, opts)
	if len(cfg.Endpoints) == 0 {
		return errors.InvalidConfig("no endpoints configured", nil)
	}

	components := make([]component.Component, 0, len(cfg.Endpoints))
	for _, name := range cfg.endpointNames() {
		c := &probedEndpoint{
			Component: endpoint.NewComponent(cfg.Endpoints[name], endpoint.WithLogger(log)),
			path:      probe,
		}
		if err := c.Start(ctx); err != nil {
			log.Warn("endpoint failed to start", logger.Fields("endpoint", name, "error", err.Error()))
		}
		defer func() { _ = c.Stop(context.WithoutCancel(ctx)) }()
		components = append(components, c)
	}

	sh := observability.Check(ctx, cfg.Name, version.Get().Short(), components...)
	out.health(sh)
	if sh.Status == component.StatusUnhealthy {
		return errors.ServiceUnavailable("one or more endpoints are unhealthy", nil)
	}
	return nil
}

// probedEndpoint extends endpoint health with an optional live call.
type probedEndpoint struct {
	*endpoint.Component
	path string
}

func (p *probedEndpoint) Health(ctx context.Context) component.Health {
	h := p.Component.Health(ctx)
	if h.Status != component.StatusHealthy || p.path == "" {
		return h
	}
	e, err := p.Endpoint()
	if err != nil {
		return h
	}
	if _, err := e.Get(ctx, p.path, serializer.Type{}); err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = fmt.Sprintf("probe %s: %s", p.path, errors.CodeOf(err))
	}
	return h
}
