package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib/trace"
	"github.com/urfave/cli/v3"
)

func viewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "List saved traces, print one as a tree, or serve them as JSON",
		ArgsUsage: "[trace-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Sources:  cli.EnvVars("PLANLIB_TRACE_DIR"),
				Usage:    "Directory containing trace JSON files",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "serve",
				Sources: cli.EnvVars("PLANLIB_VIEW_SERVE"),
				Usage:   "Serve traces over HTTP instead of printing",
			},
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":18900",
				Sources: cli.EnvVars("PLANLIB_VIEW_ADDR"),
				Usage:   "Server listen address",
			},
			&cli.BoolFlag{
				Name:  "data",
				Usage: "Include event and tool data in the tree",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src := newLocalSource(cmd.String("dir"))

			if cmd.Bool("serve") {
				return newServer(withAddr(cmd.String("addr")), withSource(src)).start(ctx)
			}

			w := cmd.Root().Writer
			if id := cmd.Args().First(); id != "" {
				t, err := src.Get(ctx, id)
				if err != nil {
					return err
				}
				printTrace(w, t, cmd.Bool("data"))
				return nil
			}
			return printTraceList(ctx, w, src)
		},
	}
}

func printTraceList(ctx context.Context, w io.Writer, src traceSource) error {
	var token string
	for {
		resp, err := src.List(ctx, listRequest{pageToken: token})
		if err != nil {
			return goerr.Wrap(err, "failed to list traces")
		}
		for _, s := range resp.traces {
			fmt.Fprintf(w, "%s\t%d\t%s\n", s.TraceID, s.Size, s.UpdatedAt.Format(time.RFC3339))
		}
		if resp.nextPageToken == "" {
			return nil
		}
		token = resp.nextPageToken
	}
}

// printTrace renders t as an indented span tree.
func printTrace(w io.Writer, t *trace.Trace, withData bool) {
	fmt.Fprintf(w, "trace %s", t.TraceID)
	if m := t.Metadata; m.Strategy != "" || m.Env != "" || m.Model != "" {
		fmt.Fprintf(w, " (strategy=%s env=%s model=%s)", m.Strategy, m.Env, m.Model)
	}
	fmt.Fprintln(w)

	if t.RootSpan != nil {
		printSpan(w, t.RootSpan, 1, withData)
	}
}

func printSpan(w io.Writer, s *trace.Span, depth int, withData bool) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s\n", indent, spanLine(s))

	if withData {
		if d := spanData(s); d != "" {
			fmt.Fprintf(w, "%s  | %s\n", indent, d)
		}
	}
	for _, child := range s.Children {
		printSpan(w, child, depth+1, withData)
	}
}

func spanLine(s *trace.Span) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", s.Kind, s.Name)

	if s.Kind != trace.SpanKindEvent {
		fmt.Fprintf(&b, " %s", s.Duration.Round(time.Millisecond))
	}
	if s.LLMCall != nil {
		fmt.Fprintf(&b, " tokens=%d/%d", s.LLMCall.InputTokens, s.LLMCall.OutputTokens)
	}
	if s.Status == trace.SpanStatusError {
		fmt.Fprintf(&b, " ERROR: %s", s.Error)
	}
	return b.String()
}

func spanData(s *trace.Span) string {
	var v any
	switch {
	case s.Event != nil:
		v = s.Event.Data
	case s.ToolExec != nil:
		v = map[string]any{"args": s.ToolExec.Args, "result": s.ToolExec.Result}
	default:
		return ""
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
