package main

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/ir"
)

const maxLineSize = 16 * 1024 * 1024

func newStreamWriter(width int, timeZoneID string, opts ...ir.Option) (*ir.Writer, error) {
	switch width {
	case 4:
		return ir.NewWriter[int32](timeZoneID, opts...)
	case 8:
		return ir.NewWriter[int64](timeZoneID, opts...)
	default:
		return nil, errors.Errorf("invalid encoding width %d: want 4 or 8", width)
	}
}

func Encode(config *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "encode <input> <output>",
		Short: "Encode a text log into an IR stream; use - for stdin or stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := getLogger(config)
			defer l.Sync() //nolint:errcheck

			layout := config.GetString("timestamp-layout")
			w, err := newStreamWriter(config.GetInt("width"), config.GetString("time-zone"),
				ir.WithTimestampPattern(layout, "go"),
				ir.WithBufferSize(config.GetInt("flush-size")),
			)
			if err != nil {
				return err
			}
			defer w.Release()

			in, err := openInput(config, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := openOutput(config, args[1], cmd.OutOrStdout())
			if err != nil {
				return err
			}

			count, err := encodeLines(in, out, w, layout, config.GetInt("flush-size"))
			if err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return errors.Wrap(err, "failed to close output")
			}

			l.Info("encoded log events",
				zap.Int("events", count),
				zap.String("input", args[0]),
				zap.String("output", args[1]),
				zap.Stringer("width", w.Width()),
			)

			return nil
		},
	}
	c.Flags().Int("width", 8, "Encoding width in bytes: 4 (delta timestamps, 32-bit variables) or 8.")
	c.Flags().String("time-zone", "UTC", "Time zone ID recorded in the stream preamble.")
	c.Flags().Int("flush-size", 1024*1024, "Buffered stream bytes that trigger a write to the output.")

	return c
}

// encodeLines writes one log event per line of in and completes the stream.
func encodeLines(in io.Reader, out io.Writer, w *ir.Writer, layout string, flushSize int) (int, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var prev event.LogEvent
	count := 0
	for scanner.Scan() {
		ev := parseLine(scanner.Text(), layout, prev)
		if _, err := w.Write(ev); err != nil {
			return count, errors.Wrapf(err, "failed to encode line %d", count+1)
		}
		prev = ev
		count++

		if w.Len() >= flushSize {
			if _, err := w.WriteTo(out); err != nil {
				return count, errors.Wrap(err, "failed to write stream")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return count, errors.Wrap(err, "failed to read input")
	}

	if _, err := w.CloseTo(out); err != nil {
		return count, errors.Wrap(err, "failed to write stream")
	}

	return count, nil
}
