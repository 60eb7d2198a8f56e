package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/trace"
	"github.com/m-mizutani/planlib/trace/logger"
	"github.com/m-mizutani/planlib/trace/metrics"
	"github.com/urfave/cli/v3"
)

func runCommand() *cli.Command {
	parsers := planlib.NewParserRegistry()

	return &cli.Command{
		Name:  "run",
		Usage: "Solve an environment task with a planning strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Value:   "simple",
				Sources: cli.EnvVars("PLANLIB_STRATEGY"),
				Usage:   "Strategy (" + strings.Join(strategyNames, ", ") + ")",
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Value:   "game24",
				Sources: cli.EnvVars("PLANLIB_ENV"),
				Usage:   "Environment (game24, frozenlake)",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Value:   "openai",
				Sources: cli.EnvVars("PLANLIB_PROVIDER"),
				Usage:   "LLM provider (openai, claude, gemini)",
			},
			&cli.StringFlag{
				Name:    "model",
				Sources: cli.EnvVars("PLANLIB_MODEL"),
				Usage:   "Model name; the provider default when empty",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Sources: cli.EnvVars("PLANLIB_API_KEY"),
				Usage:   "API key for openai or claude",
			},
			&cli.StringFlag{
				Name:    "gcp-project",
				Sources: cli.EnvVars("PLANLIB_GCP_PROJECT"),
				Usage:   "Google Cloud project for gemini",
			},
			&cli.StringFlag{
				Name:    "gcp-location",
				Value:   "us-central1",
				Sources: cli.EnvVars("PLANLIB_GCP_LOCATION"),
				Usage:   "Google Cloud location for gemini",
			},
			&cli.StringFlag{
				Name:    "numbers",
				Value:   "1 1 4 6",
				Sources: cli.EnvVars("PLANLIB_NUMBERS"),
				Usage:   "Starting numbers of game24",
			},
			&cli.IntFlag{
				Name:    "map-size",
				Sources: cli.EnvVars("PLANLIB_MAP_SIZE"),
				Usage:   "Random frozenlake board size; the classic 4x4 board when 0",
			},
			&cli.BoolFlag{
				Name:    "slippery",
				Sources: cli.EnvVars("PLANLIB_SLIPPERY"),
				Usage:   "Make frozenlake moves slip",
			},
			&cli.IntFlag{
				Name:    "seed",
				Sources: cli.EnvVars("PLANLIB_SEED"),
				Usage:   "Seed of frozenlake slipping and board generation",
			},
			&cli.IntFlag{
				Name:    "max-steps",
				Sources: cli.EnvVars("PLANLIB_MAX_STEPS"),
				Usage:   "Frozenlake truncation limit; the env default when 0",
			},
			&cli.IntFlag{
				Name:    "max-iterations",
				Value:   20,
				Sources: cli.EnvVars("PLANLIB_MAX_ITERATIONS"),
				Usage:   "Iteration budget of the strategy",
			},
			&cli.IntFlag{
				Name:    "max-thoughts",
				Value:   3,
				Sources: cli.EnvVars("PLANLIB_MAX_THOUGHTS"),
				Usage:   "Candidates per expansion (tot, dfsdt)",
			},
			&cli.IntFlag{
				Name:    "max-depth",
				Value:   3,
				Sources: cli.EnvVars("PLANLIB_MAX_DEPTH"),
				Usage:   "Decomposition depth (adapt)",
			},
			&cli.IntFlag{
				Name:    "max-trials",
				Value:   3,
				Sources: cli.EnvVars("PLANLIB_MAX_TRIALS"),
				Usage:   "Trials (reflexion)",
			},
			&cli.FloatFlag{
				Name:    "threshold",
				Value:   0.5,
				Sources: cli.EnvVars("PLANLIB_THRESHOLD"),
				Usage:   "Evaluator threshold (tot, dfsdt, reflexion)",
			},
			&cli.StringFlag{
				Name:    "parser",
				Value:   planlib.ParserFunctionCalling,
				Sources: cli.EnvVars("PLANLIB_PARSER"),
				Usage:   "Response parser of the agent (" + strings.Join(parsers.Names(), ", ") + ")",
			},
			&cli.StringFlag{
				Name:    "planner",
				Value:   "simple",
				Sources: cli.EnvVars("PLANLIB_PLANNER"),
				Usage:   "Planner (" + strings.Join(plannerNames, ", ") + ") of adapt",
			},
			&cli.StringFlag{
				Name:    "trace-dir",
				Sources: cli.EnvVars("PLANLIB_TRACE_DIR"),
				Usage:   "Directory to save the run trace as JSON",
			},
			&cli.BoolFlag{
				Name:    "trace-log",
				Sources: cli.EnvVars("PLANLIB_TRACE_LOG"),
				Usage:   "Log trace events",
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Sources: cli.EnvVars("PLANLIB_METRICS_ADDR"),
				Usage:   "Serve Prometheus metrics on this address during the run",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTask(ctx, cmd.Root().Writer, runConfig{
				provider: providerConfig{
					name:        cmd.String("provider"),
					model:       cmd.String("model"),
					apiKey:      cmd.String("api-key"),
					gcpProject:  cmd.String("gcp-project"),
					gcpLocation: cmd.String("gcp-location"),
				},
				task: taskConfig{
					env:      cmd.String("env"),
					numbers:  cmd.String("numbers"),
					mapSize:  int(cmd.Int("map-size")),
					slippery: cmd.Bool("slippery"),
					seed:     uint64(cmd.Int("seed")),
					maxSteps: int(cmd.Int("max-steps")),
				},
				strategy: strategyConfig{
					name:          cmd.String("strategy"),
					maxIterations: int(cmd.Int("max-iterations")),
					maxThoughts:   int(cmd.Int("max-thoughts")),
					maxDepth:      int(cmd.Int("max-depth")),
					maxTrials:     int(cmd.Int("max-trials")),
					threshold:     cmd.Float("threshold"),
					parser:        cmd.String("parser"),
					planner:       cmd.String("planner"),
				},
				parsers:     parsers,
				traceDir:    cmd.String("trace-dir"),
				traceLog:    cmd.Bool("trace-log"),
				metricsAddr: cmd.String("metrics-addr"),
			})
		},
	}
}

type runConfig struct {
	provider providerConfig
	task     taskConfig
	strategy strategyConfig
	parsers  *planlib.Registry[planlib.ThoughtParser]

	traceDir    string
	traceLog    bool
	metricsAddr string
}

func runTask(ctx context.Context, w io.Writer, cfg runConfig) error {
	client, closeClient, err := newClient(ctx, cfg.provider)
	if err != nil {
		return err
	}
	defer closeClient()

	return solve(ctx, w, client, cfg)
}

// solve runs the configured strategy with client and prints the outcome.
func solve(ctx context.Context, w io.Writer, client planlib.LLMClient, cfg runConfig) error {
	t, err := newTask(cfg.task)
	if err != nil {
		return err
	}

	parsers := cfg.parsers
	if parsers == nil {
		parsers = planlib.NewParserRegistry()
	}
	strategy, err := newStrategy(ctx, cfg.strategy, client, parsers, t)
	if err != nil {
		return err
	}

	ctx = planlib.CtxWithLogger(ctx, slog.Default())

	var handlers []trace.Handler
	var recorder *trace.Recorder
	if cfg.traceDir != "" {
		recorder = trace.New(
			trace.WithRepository(trace.NewFileRepository(cfg.traceDir)),
			trace.WithMetadata(trace.TraceMetadata{
				Strategy: cfg.strategy.name,
				Model:    cfg.provider.model,
				Env:      t.name,
				Labels:   map[string]string{"provider": cfg.provider.name},
			}),
		)
		handlers = append(handlers, recorder)
	}
	if cfg.traceLog {
		handlers = append(handlers, logger.New(logger.WithLogger(slog.Default())))
	}
	if cfg.metricsAddr != "" {
		exporter := metrics.New(metrics.DefaultConfig())
		stop, err := serveMetrics(cfg.metricsAddr, exporter.Handler())
		if err != nil {
			return err
		}
		defer stop()
		handlers = append(handlers, exporter)
	}

	var handler trace.Handler
	if len(handlers) > 0 {
		handler = trace.Multi(handlers...)
		ctx = trace.WithHandler(ctx, handler)
	}

	started := time.Now()
	outcome, runErr := strategy.Run(ctx, t.inputs)

	if handler != nil {
		if err := handler.Finish(ctx); err != nil {
			slog.Warn("failed to finish trace", slog.Any("error", err))
		}
	}
	if runErr != nil {
		return goerr.Wrap(runErr, "strategy failed", goerr.V("strategy", cfg.strategy.name), goerr.V("env", t.name))
	}

	printOutcome(w, outcome, t.solved(), time.Since(started))
	if recorder != nil {
		if tr := recorder.Trace(); tr != nil {
			fmt.Fprintf(w, "trace: %s\n", tr.TraceID)
		}
	}
	return nil
}

func printOutcome(w io.Writer, outcome *planlib.Outcome, solved bool, elapsed time.Duration) {
	fmt.Fprintln(w, "trajectory:")
	if len(outcome.Trajectory) == 0 {
		fmt.Fprintln(w, "  (no actions taken)")
	}
	for i, step := range outcome.Trajectory {
		fmt.Fprintf(w, "  %d. %s -> %s\n", i+1, step.Action.String(), planlib.ObservationString(step.Observation))
	}
	fmt.Fprintf(w, "output: %s\n", outcome.Finish.Output())
	fmt.Fprintf(w, "solved: %v (%s)\n", solved, elapsed.Round(time.Millisecond))
}

// serveMetrics serves h on addr until the returned function is called.
func serveMetrics(addr string, h http.Handler) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to listen", goerr.V("addr", addr))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", h)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", slog.Any("error", err))
		}
	}()
	slog.Info("serving metrics", slog.String("addr", listener.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
