package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/promptref/internal/config"
	"github.com/gubarz/promptref/internal/logging"
	"github.com/gubarz/promptref/internal/metrics"
	"github.com/gubarz/promptref/internal/output"
	"github.com/gubarz/promptref/internal/prompt"
	"github.com/gubarz/promptref/internal/ui"
	"github.com/gubarz/promptref/internal/watch"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Resolve the reference tree of a prompt file or directory",
	Long: `Follows every #file: and Markdown link reference starting at the
given prompt file, or at every prompt file under a directory, and prints
the resulting tree.

Unresolved references are reported inline. Use --strict to exit with a
non-zero status when any reference could not be resolved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-resolve the reference tree whenever a file changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

var browseCmd = &cobra.Command{
	Use:   "browse <file>",
	Short: "Browse the reference tree interactively",
	Long: `Opens an interactive list of every reference reachable from the
file. Type to filter, Enter to pick a file, ESC to leave.

The picked file is printed, copied to the clipboard or opened in your
editor depending on --output.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	resolveCmd.Flags().StringP("format", "f", "", "Output format: tree, json, yaml")
	resolveCmd.Flags().Bool("strict", false, "Fail when any reference is unresolved")
	resolveCmd.Flags().BoolP("benchmark", "b", false, "Print resolve time and memory to stderr")
	viper.BindPFlag("format", resolveCmd.Flags().Lookup("format"))

	watchCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	watchCmd.Flags().Duration("debounce", 0, "Delay between a change and the re-resolve")
	viper.BindPFlag("metrics_addr", watchCmd.Flags().Lookup("metrics-addr"))
	viper.BindPFlag("watch_debounce", watchCmd.Flags().Lookup("debounce"))

	browseCmd.Flags().StringP("output", "o", "", "Output mode: print, copy, edit")
	browseCmd.Flags().Bool("print", false, "Print path (shorthand for -o print)")
	browseCmd.Flags().Bool("copy", false, "Copy path (shorthand for -o copy)")
	browseCmd.Flags().Bool("edit", false, "Open in editor (shorthand for -o edit)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	resolver := newResolver(logger, nil)

	benchmark, _ := cmd.Flags().GetBool("benchmark")
	start := time.Now()

	roots, err := resolver.ResolveAll(cmd.Context(), targetPath(args))
	if err != nil {
		return err
	}

	if benchmark {
		elapsed := time.Since(start)
		runtime.GC()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		total := 0
		for _, root := range roots {
			total += len(root.Flatten())
		}
		fmt.Fprintf(os.Stderr, "Resolved %d references in %v\n", total, elapsed)
		fmt.Fprintf(os.Stderr, "Memory: Alloc=%dMB, TotalAlloc=%dMB, Sys=%dMB, HeapObjects=%d\n",
			m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024, m.HeapObjects)
	}

	if err := writeRoots(cmd.OutOrStdout(), config.GetFormat(), roots); err != nil {
		return err
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		failed := 0
		for _, root := range roots {
			failed += len(root.Conditions())
		}
		if failed > 0 {
			return fmt.Errorf("%d unresolved references", failed)
		}
	}
	return nil
}

// writeRoots renders the trees in the requested format
func writeRoots(w io.Writer, format string, roots []*prompt.Reference) error {
	switch format {
	case "json":
		return prompt.WriteJSON(w, roots...)
	case "yaml", "yml":
		return prompt.WriteYAML(w, roots...)
	case "tree", "":
		ui.RefreshStyles()
		for _, root := range roots {
			if _, err := io.WriteString(w, ui.RenderTree(root)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want tree, json or yaml)", format)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	var rec *metrics.Recorder
	if addr := config.GetMetricsAddr(); addr != "" {
		reg := prom.NewRegistry()
		rec = metrics.NewRecorder(reg)
		serveMetrics(ctx, addr, reg, logger)
	}

	format := config.GetFormat()
	out := cmd.OutOrStdout()
	onChange := func(roots []*prompt.Reference) {
		fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
		if err := writeRoots(out, format, roots); err != nil {
			logger.Error("cannot print references", logging.Error(err))
		}
	}

	w, err := watch.New(newResolver(logger, rec), targetPath(args), onChange,
		watch.WithDebounce(config.GetWatchDebounce()),
		watch.WithLogger(logger),
		watch.WithRecorder(rec))
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// serveMetrics exposes reg on addr until ctx is done
func serveMetrics(ctx context.Context, addr string, reg *prom.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Handle output mode flags
	if p, _ := cmd.Flags().GetBool("print"); p {
		config.SetOutput("print")
	} else if c, _ := cmd.Flags().GetBool("copy"); c {
		config.SetOutput("copy")
	} else if e, _ := cmd.Flags().GetBool("edit"); e {
		config.SetOutput("edit")
	} else if o, _ := cmd.Flags().GetString("output"); o != "" {
		config.SetOutput(o)
	}

	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return err
	}

	root, err := newResolver(newLogger(), nil).Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	selected, err := ui.Browse(root)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}
	return output.NewHandler(cmd.OutOrStdout(), config.GetEditor()).Deliver(selected.Path, mode)
}
