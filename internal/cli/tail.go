package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Srota/internal/sse"
	"github.com/shaiso/Srota/internal/task"
)

// Ширина колонок ID и EVENT в текстовом режиме.
var tailWidths = []int{12, 16}

// NewTailCmd создаёт команду чтения SSE потока.
func NewTailCmd(outputFn func() *Output) *cobra.Command {
	var headers []string
	var timestamps bool

	cmd := &cobra.Command{
		Use:   "tail URL",
		Short: "Print events from a text/event-stream endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			header, err := parseHeaders(headers)
			if err != nil {
				return err
			}

			if !out.JSONMode() {
				out.Stream(tailWidths, []string{"ID", "EVENT", "DATA"}, nil)
			}

			stream, err := task.NewSSE(task.SSEConfig{
				Name:   "tail",
				URL:    args[0],
				Header: header,
				Handler: func(_ context.Context, ev sse.Event) error {
					printEvent(out, ev, timestamps)
					return nil
				},
			})
			if err != nil {
				return err
			}

			return stream.Run(cmd.Context())
		},
	}

	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "Request header in 'Key: Value' form (repeatable)")
	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "Prefix events with receive time")

	return cmd
}

// tailEvent — JSON представление события.
type tailEvent struct {
	sse.Event
	ReceivedAt string `json:"received_at,omitempty"`
}

func printEvent(out *Output, ev sse.Event, timestamps bool) {
	row := tailEvent{Event: ev}
	data := ev.Data
	if timestamps {
		row.ReceivedAt = time.Now().UTC().Format(time.RFC3339)
		data = row.ReceivedAt + " " + data
	}
	out.Stream(tailWidths, []string{orDash(ev.ID), orDash(ev.Type), data}, row)
}

func parseHeaders(raw []string) (http.Header, error) {
	header := http.Header{}
	for _, h := range raw {
		key, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Key: Value'", h)
		}
		header.Add(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return header, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
