package cli

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Srota/internal/builder"
	"github.com/shaiso/Srota/internal/source"
	"github.com/shaiso/Srota/internal/steps"
	"github.com/shaiso/Srota/internal/task"
	"github.com/shaiso/Srota/internal/worker"
)

const demoStopTimeout = 10 * time.Second

// NewDemoCmd создаёт группу демонстрационных сценариев.
func NewDemoCmd(loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run example workers",
	}

	cmd.AddCommand(
		newDemoPollingCmd(loggerFn, outputFn),
		newDemoEventCmd(loggerFn, outputFn),
		newDemoPipelineCmd(loggerFn, outputFn),
		newDemoCombinedCmd(loggerFn, outputFn),
	)

	return cmd
}

func newDemoPollingCmd(loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	var duration, every time.Duration

	cmd := &cobra.Command{
		Use:   "polling",
		Short: "Polling task with retries",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			w, err := builder.New().
				WithLogger(loggerFn()).
				OnError(reportTo(out)).
				AddPolling("CheckDatabase", every).WithRetry(3, time.Second).Do(func(ctx context.Context) error {
				out.Linef("[%s] Checking database...", stamp())
				return steps.Delay(100 * time.Millisecond)(ctx)
			}).
				Build()
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), w, duration)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 7*time.Second, "How long to run")
	cmd.Flags().DurationVar(&every, "every", 2*time.Second, "Polling interval")

	return cmd
}

func newDemoEventCmd(loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	var duration, produceEvery time.Duration
	var count int

	cmd := &cobra.Command{
		Use:   "event",
		Short: "Event task reading an in-memory queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			queue := source.NewQueue[string]()

			w, err := builder.AddEvent(builder.New().WithLogger(loggerFn()), "MessageProcessor",
				func() (task.EventSource[string], error) {
					return source.NewQueueSource(queue, 0), nil
				}).
				Do(func(ctx context.Context, msg string) error {
					out.Linef("[%s] Processing: %s", stamp(), msg)
					return nil
				}).
				Build()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go produce(ctx, queue, "Message", count, produceEvery)

			return runDemo(ctx, w, duration)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 7*time.Second, "How long to run")
	cmd.Flags().DurationVar(&produceEvery, "produce-every", time.Second, "Producer interval")
	cmd.Flags().IntVar(&count, "count", 5, "Number of messages to produce")

	return cmd
}

func newDemoPipelineCmd(loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	var duration, every time.Duration

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Pipeline of three sequential steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			step := func(msg string) task.Step {
				return func(ctx context.Context) error {
					out.Linef("[%s] %s", stamp(), msg)
					return steps.Delay(200 * time.Millisecond)(ctx)
				}
			}

			w, err := builder.New().
				WithLogger(loggerFn()).
				OnError(reportTo(out)).
				AddPipeline("DataPipeline").
				Then(step("Step 1: Fetch data")).
				Then(step("Step 2: Transform data")).
				Then(step("Step 3: Save data")).
				Every(every).
				Build()
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), w, duration)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 8*time.Second, "How long to run")
	cmd.Flags().DurationVar(&every, "every", 3*time.Second, "Interval between passes")

	return cmd
}

func newDemoCombinedCmd(loggerFn func() *slog.Logger, outputFn func() *Output) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "combined",
		Short: "Polling, event and pipeline tasks in one worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			queue := source.NewQueue[string]()

			b := builder.New().
				WithLogger(loggerFn()).
				OnError(reportTo(out)).
				AddPolling("HealthCheck", 3*time.Second).Do(func(context.Context) error {
				out.Linef("[%s] Health check passed", stamp())
				return nil
			}).
				AddPipeline("Cleanup").
				Then(func(context.Context) error {
					out.Linef("[%s] Cleanup: Check logs", stamp())
					return nil
				}).
				Then(func(context.Context) error {
					out.Linef("[%s] Cleanup: Archive old data", stamp())
					return nil
				}).
				Every(5 * time.Second)

			w, err := builder.AddEvent(b, "AlertProcessor", func() (task.EventSource[string], error) {
				return source.NewQueueSource(queue, 0), nil
			}).Do(func(ctx context.Context, alert string) error {
				out.Linef("[%s] %s", stamp(), alert)
				return nil
			}).Build()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go produce(ctx, queue, "Alert", 3, 2*time.Second)

			return runDemo(ctx, w, duration)
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "How long to run")

	return cmd
}

// runDemo запускает воркер на d или до отмены ctx, затем останавливает его.
func runDemo(ctx context.Context, w *worker.Worker, d time.Duration) error {
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), demoStopTimeout)
	defer cancel()
	if err := w.Stop(stopCtx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// produce добавляет count сообщений в очередь с интервалом every.
func produce(ctx context.Context, q *source.Queue[string], prefix string, count int, every time.Duration) {
	for i := 1; i <= count; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(every):
		}
		q.Enqueue(prefix + " " + strconv.Itoa(i))
	}
}

func reportTo(out *Output) worker.ErrorHandler {
	return func(err error, name string) {
		out.Error(name + ": " + err.Error())
	}
}

func stamp() string {
	return time.Now().Format("15:04:05")
}
