// Srota CLI — запуск демонстрационных воркеров, чтение SSE потоков
// и публикация тестовых событий в источники воркера.
//
// Использование:
//
//	srota [--json] [--log-level LEVEL] <command> <subcommand> [flags]
//
// Команды:
//
//	demo      Примеры воркеров (polling, event, pipeline, combined)
//	tail      Печать событий text/event-stream
//	publish   Публикация сообщений (redis, amqp, kafka, outbox)
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Srota/internal/cli"
	"github.com/shaiso/Srota/internal/config"
	"github.com/shaiso/Srota/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var jsonOutput bool
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "srota",
		Short:         "Srota CLI — background task runner",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	// Логи идут в stderr, чтобы не смешиваться с выводом команд.
	loggerFn := func() *slog.Logger { return telemetry.NewLogger(os.Stderr, logLevel, cfg.LogFormat) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewDemoCmd(loggerFn, outputFn),
		cli.NewTailCmd(outputFn),
		cli.NewPublishCmd(cfg, loggerFn, outputFn),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}
