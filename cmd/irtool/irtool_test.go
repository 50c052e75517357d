package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
)

var sampleLog = strings.Join([]string{
	"2024-03-01T10:00:00Z Connection failed: boot",
	"2024-03-01T10:00:05Z Connection FAILED: timeout after 30 s",
	"2024-03-01T10:00:10.25Z request id=af31 took 12.5 ms",
	"2024-03-01T11:00:15+01:00 Connection failed again",
	"2024-03-01T11:00:20+01:00 request id=b7c2 took 3.75 ms",
}, "\n") + "\n"

func runCommand(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	root := newRootCommand(newConfig())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.Execute()

	return out.String(), err
}

func writeSample(t *testing.T) (dir string, input string) {
	t.Helper()

	dir = t.TempDir()
	input = filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(input, []byte(sampleLog), 0o600))

	return dir, input
}

func TestParseLine(t *testing.T) {
	prev := event.LogEvent{Timestamp: 42, UtcOffset: 7200000}

	tests := []struct {
		name   string
		line   string
		layout string
		want   event.LogEvent
	}{
		{
			name:   "rfc3339",
			line:   "2024-03-01T10:00:00.5+02:00 disk 93% full",
			layout: time.RFC3339Nano,
			want:   event.LogEvent{Message: "disk 93% full", Timestamp: 1709280000500, UtcOffset: 7200000},
		},
		{
			name:   "layout with spaces",
			line:   "2024-03-01 10:00:00 ready",
			layout: "2006-01-02 15:04:05",
			want:   event.LogEvent{Message: "ready", Timestamp: 1709287200000},
		},
		{
			name:   "no timestamp",
			line:   "  at com.example.Main(Main.java:10)",
			layout: time.RFC3339Nano,
			want:   event.LogEvent{Message: "  at com.example.Main(Main.java:10)", Timestamp: 42, UtcOffset: 7200000},
		},
		{
			name:   "timestamp only",
			line:   "2024-03-01T10:00:00Z",
			layout: time.RFC3339Nano,
			want:   event.LogEvent{Message: "2024-03-01T10:00:00Z", Timestamp: 42, UtcOffset: 7200000},
		},
		{
			name:   "empty message",
			line:   "2024-03-01T10:00:00Z ",
			layout: time.RFC3339Nano,
			want:   event.LogEvent{Message: "", Timestamp: 1709287200000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLine(tt.line, tt.layout, prev))
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ev := event.LogEvent{Message: "disk 93% full", Timestamp: 1709280000500, UtcOffset: 7200000}
	line := formatEvent(ev, time.RFC3339Nano)

	assert.Equal(t, "2024-03-01T10:00:00.5+02:00 disk 93% full", line)
	assert.Equal(t, ev, parseLine(line, time.RFC3339Nano, event.LogEvent{}))
}

func TestParseTimeBound(t *testing.T) {
	ts, err := parseTimeBound("", 7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, ts)

	ts, err = parseTimeBound("1709287200000", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1709287200000, ts)

	ts, err = parseTimeBound("2024-03-01T10:00:00Z", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1709287200000, ts)

	_, err = parseTimeBound("yesterday", 0)
	require.Error(t, err)
}

func TestDescribeLogtype(t *testing.T) {
	logtype := []byte("took \x11 ms, ratio \x13 for id=\x12 path C:\\\\tmp")
	assert.Equal(t, `took <int> ms, ratio <float> for id=<dict> path C:\tmp`, describeLogtype(logtype))
}

func TestEncodeDecode(t *testing.T) {
	for _, tc := range []struct {
		name   string
		output string
		width  string
	}{
		{name: "plain eight-byte", output: "app.clp", width: "8"},
		{name: "zstd four-byte", output: "app.clp.zst", width: "4"},
		{name: "s2", output: "app.clp.s2", width: "8"},
		{name: "lz4", output: "app.clp.lz4", width: "4"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)

			dir, input := writeSample(t)
			output := filepath.Join(dir, tc.output)

			_, err := runCommand(t, nil, "encode", input, output, "--width", tc.width)
			require.NoError(err)

			decoded, err := runCommand(t, nil, "decode", output)
			require.NoError(err)
			require.Equal(sampleLog, decoded)
		})
	}
}

func TestEncode_Stdin(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	output := filepath.Join(dir, "stdin.clp")

	_, err := runCommand(t, strings.NewReader(sampleLog), "encode", "-", output, "--flush-size", "64")
	require.NoError(err)

	decoded, err := runCommand(t, nil, "decode", output)
	require.NoError(err)
	require.Equal(sampleLog, decoded)
}

func TestEncode_InvalidWidth(t *testing.T) {
	_, input := writeSample(t)

	_, err := runCommand(t, nil, "encode", input, filepath.Join(t.TempDir(), "x.clp"), "--width", "2")
	require.Error(t, err)
}

func TestEncode_OutputFailure(t *testing.T) {
	_, input := writeSample(t)
	output := filepath.Join(t.TempDir(), "missing", "app.clp")

	_, err := runCommand(t, nil, "encode", input, output)
	require.Error(t, err)

	// A failed run leaves nothing behind for the next one.
	dir, input := writeSample(t)
	output = filepath.Join(dir, "app.clp")
	_, err = runCommand(t, nil, "encode", input, output)
	require.NoError(t, err)

	decoded, err := runCommand(t, nil, "decode", output)
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSpace(decoded), "\n"), 5)
}

func TestIsStreamEnd(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		extra []error
		want  bool
	}{
		{name: "end of stream", err: errs.ErrEndOfStream, want: true},
		{name: "wrapped end of stream", err: fmt.Errorf("reading: %w", errs.ErrEndOfStream), want: true},
		{name: "eof", err: io.EOF, want: true},
		{name: "wrapped eof", err: fmt.Errorf("%w: source", io.EOF), want: true},
		{name: "unexpected eof", err: io.ErrUnexpectedEOF, want: false},
		{name: "corrupted", err: fmt.Errorf("%w: bad tag", errs.ErrCorruptedIR), want: false},
		{name: "window not an end by default", err: errs.ErrWindowExhausted, want: false},
		{
			name:  "window as extra end",
			err:   fmt.Errorf("search: %w", errs.ErrWindowExhausted),
			extra: []error{errs.ErrWindowExhausted},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isStreamEnd(tt.err, tt.extra...))
		})
	}
}

func TestSearch(t *testing.T) {
	dir, input := writeSample(t)
	output := filepath.Join(dir, "app.clp.zst")
	_, err := runCommand(t, nil, "encode", input, output)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "case sensitive",
			args: []string{"-q", "*failed*"},
			want: []string{
				"2024-03-01T10:00:00Z Connection failed: boot",
				"2024-03-01T11:00:15+01:00 Connection failed again",
			},
		},
		{
			name: "ignore case inside window",
			args: []string{"-q", "*connection fail*", "-i", "--from", "2024-03-01T10:00:05Z", "--to", "2024-03-01T10:00:15Z"},
			want: []string{"2024-03-01T10:00:05Z Connection FAILED: timeout after 30 s"},
		},
		{
			name: "several queries",
			args: []string{"-q", "request id=b7c?*", "-q", "*boot", "--show-query"},
			want: []string{
				"[1] 2024-03-01T10:00:00Z Connection failed: boot",
				"[0] 2024-03-01T11:00:20+01:00 request id=b7c2 took 3.75 ms",
			},
		},
		{
			name: "no queries",
			args: []string{"--from", "1709287210000", "--to", "1709287215000"},
			want: []string{"2024-03-01T10:00:10.25Z request id=af31 took 12.5 ms"},
		},
		{
			name: "no match",
			args: []string{"-q", "*panic*"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, nil, append([]string{"search", output}, tt.args...)...)
			require.NoError(t, err)

			var got []string
			if out != "" {
				got = strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_InvalidBound(t *testing.T) {
	dir, input := writeSample(t)
	output := filepath.Join(dir, "app.clp")
	_, err := runCommand(t, nil, "encode", input, output)
	require.NoError(t, err)

	_, err = runCommand(t, nil, "search", output, "--from", "soon")
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	require := require.New(t)

	dir, input := writeSample(t)
	output := filepath.Join(dir, "app.clp.lz4")
	_, err := runCommand(t, nil, "encode", input, output, "--time-zone", "Europe/Paris")
	require.NoError(err)

	out, err := runCommand(t, nil, "stats", output, "--top", "2")
	require.NoError(err)

	require.Contains(out, "Europe/Paris")
	require.Contains(out, "EightByte")
	require.Contains(out, "request id=<dict> took <float> ms")
	require.Contains(out, "40.0%")
	require.NotContains(out, "Connection failed again", "only the top logtypes are listed")
}

func TestCompressionFromEnv(t *testing.T) {
	require := require.New(t)

	dir, input := writeSample(t)
	output := filepath.Join(dir, "app.bin")

	t.Setenv("IRTOOL_COMPRESSION", "s2")
	_, err := runCommand(t, nil, "encode", input, output)
	require.NoError(err)

	raw, err := os.ReadFile(output)
	require.NoError(err)
	require.True(bytes.HasPrefix(raw, []byte("\xff\x06\x00\x00S2sTwO")), "s2 stream identifier")

	decoded, err := runCommand(t, nil, "decode", output)
	require.NoError(err)
	require.Equal(sampleLog, decoded)

	_, err = runCommand(t, nil, "decode", output, "--compression", "none")
	require.Error(err)

	t.Setenv("IRTOOL_COMPRESSION", "brotli")
	_, err = runCommand(t, nil, "decode", output)
	require.Error(err)
}
