package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/haukened/nodar/internal/dns/common/log"
	"github.com/haukened/nodar/internal/dns/config"
	"github.com/haukened/nodar/internal/dns/domain"
	"github.com/haukened/nodar/internal/dns/gateways/mlabns"
	"github.com/haukened/nodar/internal/dns/gateways/transport"
	"github.com/haukened/nodar/internal/dns/gateways/wire"
	"github.com/haukened/nodar/internal/dns/repos/peerhosts"
	"github.com/haukened/nodar/internal/dns/services/resolver"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const appName = "nodard"

// Application holds all the components of the pipe backend
type Application struct {
	config    *config.AppConfig
	transport *transport.PipeTransport
	resolver  *resolver.Resolver
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "nodard - PowerDNS pipe backend answering from mlab-ns",
	Long: `nodard is spawned by PowerDNS as a pipe backend. It reads queries on
stdin and writes answers on stdout.

A queries for the alias host are answered with the server mlab-ns selects
for the querying client. NS queries are answered from a static list of peer
hosts, and SOA is fixed. Diagnostics are written to stderr.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		return run(path, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"nodard version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))
	rootCmd.Flags().StringP("config", "c", "", "Path to a YAML config file (NODAR_* environment variables take precedence)")
}

// run loads configuration, builds the application and serves until the host
// closes the pipe or a shutdown signal arrives.
func run(configPath string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		return fmt.Errorf("logging configuration error: %w", err)
	}

	log.Info(map[string]any{
		"version":    Version,
		"env":        cfg.Env,
		"log_level":  cfg.LogLevel,
		"zone":       cfg.Zone,
		"alias":      cfg.Alias,
		"hosts_file": cfg.HostsFile,
		"mlabns_url": cfg.MlabnsURL,
	}, "Starting nodar pipe backend")

	app, err := buildApplication(cfg, in, out)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info(map[string]any{"signal": sig.String()}, "Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := app.Run(ctx); err != nil {
		return err
	}

	log.Info(nil, "nodar pipe backend stopped")
	return nil
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig, in io.Reader, out io.Writer) (*Application, error) {
	logger := log.GetLogger()

	zone, err := domain.NewZone(cfg.Zone, cfg.Alias, cfg.TTL, cfg.NSPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid zone: %w", err)
	}

	hosts := buildHostSource(cfg, logger)

	naming, err := mlabns.NewClient(mlabns.Options{
		Endpoint:  cfg.MlabnsURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.MlabnsTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mlab-ns client: %w", err)
	}

	log.Info(map[string]any{
		"endpoint":   cfg.MlabnsURL,
		"timeout":    cfg.MlabnsTimeout.String(),
		"user_agent": naming.UserAgent(),
	}, "mlab-ns client configured")

	resolverService := resolver.NewResolver(resolver.ResolverOptions{
		Zone:   zone,
		Naming: naming,
		Hosts:  hosts,
		Logger: logger,
	})

	codec := wire.NewPipeCodec(zone.TTL, logger)
	pipe := transport.NewPipeTransport(in, out, codec, cfg.Banner, logger)

	return &Application{
		config:    cfg,
		transport: pipe,
		resolver:  resolverService,
	}, nil
}

// buildHostSource returns the peer host list, cached when a TTL is configured.
func buildHostSource(cfg *config.AppConfig, logger log.Logger) resolver.PeerHostSource {
	file := peerhosts.NewFileSource(cfg.HostsFile, cfg.MaxNSHosts, logger)
	if cfg.HostsCacheTTL <= 0 {
		return file
	}
	log.Info(map[string]any{
		"type": "LRU",
		"ttl":  cfg.HostsCacheTTL.String(),
	}, "Peer host cache configured")
	return peerhosts.NewCachedSource(file, cfg.HostsCacheTTL)
}

// Run serves the pipe protocol and blocks until the input ends or ctx is
// cancelled. A blocked read on the host pipe does not delay shutdown.
func (app *Application) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- app.transport.Serve(ctx, app.resolver)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("pipe transport failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info(nil, "Shutdown initiated")
		return nil
	}
}
