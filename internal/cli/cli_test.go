package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"

	"github.com/shaiso/Srota/internal/config"
	"github.com/shaiso/Srota/internal/telemetry"
)

// syncBuffer — bytes.Buffer с мьютексом: задачи пишут из разных горутин.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// execute запускает команду и возвращает stdout и stderr.
func execute(t *testing.T, newCmd func(outputFn func() *Output) *cobra.Command, jsonMode bool, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr syncBuffer
	out := NewOutputTo(&stdout, &stderr, jsonMode)

	cmd := newCmd(func() *Output { return out })
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func discardLogger() *slog.Logger { return telemetry.DiscardLogger() }

// --- Output Tests ---

func TestOutput_Table(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(&buf, &buf, false)

	out.Print([]string{"ID", "NAME"}, [][]string{{"1", "alpha"}}, nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator and row, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "--") {
		t.Errorf("expected dash separator, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "alpha") {
		t.Errorf("expected row with alpha, got %q", lines[2])
	}
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(&buf, &buf, true)

	out.Print(nil, nil, map[string]string{"id": "1"})

	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["id"] != "1" {
		t.Errorf("expected id=1, got %v", got)
	}
}

func TestOutput_Stream(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo(&buf, &buf, false)

	out.Stream([]int{4, 4}, []string{"a", "b", "tail"}, nil)
	if got := buf.String(); got != "a     b     tail\n" {
		t.Errorf("unexpected stream row %q", got)
	}
}

// --- Demo Tests ---

func TestDemo_Polling(t *testing.T) {
	newCmd := func(outputFn func() *Output) *cobra.Command { return NewDemoCmd(discardLogger, outputFn) }

	stdout, _, err := execute(t, newCmd, false, "polling", "--duration", "600ms", "--every", "100ms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(stdout, "Checking database..."); n < 2 {
		t.Errorf("expected at least 2 polls, got %d:\n%s", n, stdout)
	}
}

func TestDemo_Event(t *testing.T) {
	newCmd := func(outputFn func() *Output) *cobra.Command { return NewDemoCmd(discardLogger, outputFn) }

	stdout, _, err := execute(t, newCmd, false, "event", "--duration", "500ms", "--produce-every", "20ms", "--count", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i <= 3; i++ {
		if !strings.Contains(stdout, fmt.Sprintf("Processing: Message %d", i)) {
			t.Errorf("message %d not processed:\n%s", i, stdout)
		}
	}
	if strings.Index(stdout, "Message 1") > strings.Index(stdout, "Message 3") {
		t.Errorf("messages processed out of order:\n%s", stdout)
	}
}

func TestDemo_Pipeline(t *testing.T) {
	newCmd := func(outputFn func() *Output) *cobra.Command { return NewDemoCmd(discardLogger, outputFn) }

	stdout, _, err := execute(t, newCmd, false, "pipeline", "--duration", "500ms", "--every", "50ms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	i1 := strings.Index(stdout, "Step 1")
	i2 := strings.Index(stdout, "Step 2")
	i3 := strings.Index(stdout, "Step 3")
	if i1 < 0 || i2 < i1 || i3 < i2 {
		t.Errorf("steps out of order:\n%s", stdout)
	}
}

// --- Tail Tests ---

func TestTail_Text(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Token") != "abc" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		fmt.Fprint(w, "id: 7\nevent: ping\ndata: hello\n\n")
	}))
	defer server.Close()

	stdout, _, err := execute(t, NewTailCmd, false, server.URL, "-H", "X-Token: abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one event, got %q", stdout)
	}
	fields := strings.Fields(lines[1])
	if len(fields) != 3 || fields[0] != "7" || fields[1] != "ping" || fields[2] != "hello" {
		t.Errorf("unexpected event row %q", lines[1])
	}
}

func TestTail_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: one\n\ndata: two\n\n")
	}))
	defer server.Close()

	stdout, _, err := execute(t, NewTailCmd, true, server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dec := json.NewDecoder(strings.NewReader(stdout))
	for _, want := range []string{"one", "two"} {
		var ev map[string]any
		if err := dec.Decode(&ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev["data"] != want {
			t.Errorf("expected data %q, got %v", want, ev["data"])
		}
	}
}

func TestTail_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	if _, _, err := execute(t, NewTailCmd, false, server.URL); err == nil {
		t.Error("expected error for 403")
	}
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"Authorization: Bearer x", "X-A:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Get("Authorization") != "Bearer x" || h.Get("X-A") != "1" {
		t.Errorf("unexpected headers: %v", h)
	}

	if _, err := parseHeaders([]string{"no-colon"}); err == nil {
		t.Error("expected error for malformed header")
	}
}

// --- Publish Tests ---

func TestPublish_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	newCmd := func(outputFn func() *Output) *cobra.Command {
		return NewPublishCmd(config.Default(), discardLogger, outputFn)
	}

	_, stderr, err := execute(t, newCmd, false, "redis", "first", "second", "--addr", mr.Addr(), "--key", "jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := mr.List("jobs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0] != "first" || items[1] != "second" {
		t.Errorf("expected [first second], got %v", items)
	}
	if !strings.Contains(stderr, "Pushed 2 message(s)") {
		t.Errorf("expected success message, got %q", stderr)
	}
}
