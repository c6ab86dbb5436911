package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emergent-company/graphcommons-go/internal/config"
	"github.com/emergent-company/graphcommons-go/internal/metrics"
	"github.com/emergent-company/graphcommons-go/pkg/graphcommons"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	out        io.Writer

	client *graphcommons.Client
	logger *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "graphcommons",
		Short:         "Read and mutate graphs on the Graph Commons API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			return a.setup()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("GRAPHCOMMONS_CONFIG"), "path to a TOML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		a.statusCmd(),
		a.graphCmd(),
		a.nodeCmd(),
		a.pathsCmd(),
		a.subgraphCmd(),
		a.clearCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}

	// Logs go to stderr; stdout carries command output.
	a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))

	if cfg.Metrics.Addr != "" {
		if _, err := metrics.Serve(cfg.Metrics.Addr); err != nil {
			return err
		}
		a.logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
	}

	a.client, err = graphcommons.NewClient(graphcommons.Options{
		APIKey:     cfg.API.Key,
		BaseURL:    cfg.API.URL,
		Logger:     a.logger,
		MaxRetries: cfg.API.MaxRetries,
		Timeout:    cfg.API.Timeout.Duration,
	})
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := a.client.Status(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(status)
		},
	}
}

func (a *app) graphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <id>",
		Short: "Fetch a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.client.Graph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(g)
		},
	}
}

func (a *app) nodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "node <id>",
		Short: "Fetch a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.client.Node(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(n)
		},
	}
}

func (a *app) pathsCmd() *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "paths <graph-id>",
		Short: "Find paths through a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(query)
			if err != nil {
				return err
			}
			paths, err := a.client.Paths(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			out := make([]map[string]any, 0, len(paths))
			for _, p := range paths {
				out = append(out, map[string]any{
					"path_string": p.PathString,
					"nodes":       p.Nodes,
					"edges":       p.Edges,
					"dirs":        p.Dirs,
				})
			}
			return a.print(out)
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "path query parameter as key=value (repeatable)")
	return cmd
}

func (a *app) subgraphCmd() *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "subgraph <graph-id> <name>",
		Short: "Create a new graph from the paths found in a graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(query)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			base, err := a.client.Graph(ctx, args[0])
			if err != nil {
				return err
			}
			paths, err := a.client.Paths(ctx, args[0], q)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no paths found in graph %s", args[0])
			}
			g, err := a.client.NewGraphFromPaths(ctx, base, args[1], paths...)
			if err != nil {
				return err
			}
			a.logger.Info("created graph from paths", "id", g.ID(), "paths", len(paths))
			return a.print(g)
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "path query parameter as key=value (repeatable)")
	return cmd
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <graph-id>",
		Short: "Delete every node and edge of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.client.ClearGraph(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(g)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

// parseQuery turns repeated key=value flags into url.Values.
func parseQuery(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query %q: want key=value", p)
		}
		q.Add(k, v)
	}
	return q, nil
}
