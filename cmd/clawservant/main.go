// Command clawservant runs the autonomous agent: one-shot task processing,
// a continuous workspace-polling loop, or status inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mayur-dot-ai/ClawServant/agent"
	"github.com/mayur-dot-ai/ClawServant/config"
	"github.com/mayur-dot-ai/ClawServant/llm"
	"github.com/mayur-dot-ai/ClawServant/servant"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "clawservant:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("clawservant", flag.ContinueOnError)
	var (
		task        = fs.String("task", "", "process a single task and exit")
		continuous  = fs.Bool("continuous", false, "run the continuous cycle until interrupted")
		interval    = fs.Duration("interval", 0, "seconds between cycles in continuous mode")
		duration    = fs.Duration("duration", 0, "stop continuous mode after this long")
		memoryN     = fs.Int("memory", 0, "print the last N memory records and exit")
		status      = fs.Bool("status", false, "print agent status and exit")
		name        = fs.String("name", "", "agent name override")
		credentials = fs.String("credentials", "", "path to credentials.json (default: <workspace>/credentials.json)")
		configPath  = fs.String("config", "", "path to config.yaml")
		logLevel    = fs.String("log-level", "", "trace, debug, info, warn, or error")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *name != "" {
		cfg.Name = *name
	}
	if *interval > 0 {
		cfg.Interval = *interval
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	config.SetupLogging(level)

	credsPath := *credentials
	if credsPath == "" {
		credsPath = filepath.Join(cfg.Workspace, "credentials.json")
	}
	creds, err := config.LoadCredentials(credsPath)
	if err != nil {
		return err
	}

	registry := llm.NewRegistry(creds, llm.WithCallTimeout(cfg.CallTimeout))
	s, err := servant.New(cfg, registry)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *status:
		fmt.Fprint(out, s.Status())
		return nil

	case *memoryN > 0:
		for _, rec := range s.Memory().Recent(*memoryN, "") {
			fmt.Fprintf(out, "%s [%s] %s\n", rec.Timestamp.Format(time.RFC3339), rec.Kind, rec.Content)
		}
		return nil

	case *task != "":
		result, err := s.ProcessTask(ctx, *task)
		if err != nil {
			return err
		}
		text := result.Response
		if result.HitIterationCap {
			slog.Warn("iteration cap reached, response may be incomplete")
			text = agent.StripToolCalls(text)
		}
		fmt.Fprintln(out, text)
		return nil

	case *continuous:
		return s.Run(ctx, *duration)

	default:
		s.Cycle(ctx)
		return nil
	}
}
