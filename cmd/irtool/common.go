package main

import (
	stderrors "errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/transport"
)

const defaultTimestampLayout = time.RFC3339Nano

// isStreamEnd reports whether err marks the clean end of a stream, either the end-of-stream
// unit or a source ending between units. Any of extra also counts as an end.
func isStreamEnd(err error, extra ...error) bool {
	if stderrors.Is(err, errs.ErrEndOfStream) || stderrors.Is(err, io.EOF) {
		return true
	}
	for _, target := range extra {
		if stderrors.Is(err, target) {
			return true
		}
	}

	return false
}

func getLogger(config *viper.Viper) *zap.Logger {
	opts := zap.NewProductionConfig()
	if config.GetBool("debug") {
		opts = zap.NewDevelopmentConfig()
	}
	opts.OutputPaths = []string{"stderr"}
	opts.ErrorOutputPaths = []string{"stderr"}

	l, err := opts.Build()
	if err != nil {
		panic(err)
	}

	return l
}

// compressionKind resolves the compression flag for path. "auto" picks the kind from the
// file extension.
func compressionKind(config *viper.Viper, path string) (transport.Kind, error) {
	name := config.GetString("compression")
	if name == "" || name == "auto" {
		return transport.KindFromPath(path), nil
	}

	kind, err := transport.ParseKind(name)
	if err != nil {
		return transport.KindNone, errors.Wrap(err, "invalid compression flag")
	}

	return kind, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

type readCloser struct {
	io.Reader
	io.Closer
}

type writeCloser struct {
	io.Writer
	io.Closer
}

// openInput opens path ("-" for stdin) and wraps it with a decompressor.
func openInput(config *viper.Viper, path string, stdin io.Reader) (io.ReadCloser, error) {
	kind, err := compressionKind(config, path)
	if err != nil {
		return nil, err
	}

	var src io.Reader = stdin
	closers := multiCloser{}
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open input")
		}
		src = f
		closers = append(closers, f)
	}

	r, err := transport.NewReader(src, kind)
	if err != nil {
		_ = closers.Close()
		return nil, errors.Wrapf(err, "failed to open %s reader", kind)
	}

	return readCloser{Reader: r, Closer: append(closers, r)}, nil
}

// openOutput creates path ("-" for stdout) and wraps it with a compressor. Closing the
// result flushes the compressor and closes the file.
func openOutput(config *viper.Viper, path string, stdout io.Writer) (io.WriteCloser, error) {
	kind, err := compressionKind(config, path)
	if err != nil {
		return nil, err
	}

	var dst io.Writer = stdout
	closers := multiCloser{}
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create output")
		}
		dst = f
		closers = append(closers, f)
	}

	w, err := transport.NewWriter(dst, kind)
	if err != nil {
		_ = closers.Close()
		return nil, errors.Wrapf(err, "failed to open %s writer", kind)
	}

	return writeCloser{Writer: w, Closer: append(closers, w)}, nil
}

// parseTimeBound parses an epoch-millisecond integer or an RFC 3339 time. The empty string
// yields fallback.
func parseTimeBound(s string, fallback event.EpochTimeMs) (event.EpochTimeMs, error) {
	if s == "" {
		return fallback, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return event.EpochTimeMs(ms), nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, errors.Errorf("invalid time bound %q: want epoch milliseconds or RFC 3339", s)
	}

	return event.FromTime(t), nil
}

// parseLine splits a text line into a log event. The line starts with a timestamp in
// layout followed by a space; lines without one keep the previous timestamp and offset.
func parseLine(line string, layout string, prev event.LogEvent) event.LogEvent {
	fields := strings.Count(layout, " ") + 1
	parts := strings.SplitN(line, " ", fields+1)
	if len(parts) <= fields {
		return event.LogEvent{Message: line, Timestamp: prev.Timestamp, UtcOffset: prev.UtcOffset}
	}

	t, err := time.Parse(layout, strings.Join(parts[:fields], " "))
	if err != nil {
		return event.LogEvent{Message: line, Timestamp: prev.Timestamp, UtcOffset: prev.UtcOffset}
	}
	_, offset := t.Zone()

	return event.LogEvent{
		Message:   parts[fields],
		Timestamp: event.FromTime(t),
		UtcOffset: event.EpochTimeMs(offset) * 1000,
	}
}

// formatEvent renders ev as a text line in layout, the inverse of parseLine.
func formatEvent(ev event.LogEvent, layout string) string {
	return ev.LocalTime().Format(layout) + " " + ev.Message
}
