package main

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/ir"
	"github.com/arloliu/logir/search"
)

func Search(config *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "search <input>",
		Short: "Print the log events matching wildcard queries inside a time window",
		Long: "Print the log events matching any of the wildcard queries. '*' matches any text, " +
			"'?' one character and '\\' escapes the next character. Without queries every " +
			"event of the window is printed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := getLogger(config)
			defer l.Sync() //nolint:errcheck

			// String arrays are read from the flag set; viper would split them on commas.
			patterns, err := cmd.Flags().GetStringArray("query")
			if err != nil {
				return err
			}
			caseSensitive := !config.GetBool("ignore-case")
			queries := make([]search.WildcardQuery, 0, len(patterns))
			for _, p := range patterns {
				queries = append(queries, search.NewWildcardQuery(p, caseSensitive))
			}

			lower, err := parseTimeBound(config.GetString("from"), math.MinInt64)
			if err != nil {
				return err
			}
			upper, err := parseTimeBound(config.GetString("to"), math.MaxInt64)
			if err != nil {
				return err
			}
			interval := search.TimestampInterval{Lower: lower, Upper: upper}

			in, err := openInput(config, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			rd, err := ir.NewReader(in)
			if err != nil {
				return errors.Wrap(err, "failed to read preamble")
			}
			defer rd.Close()

			out := bufio.NewWriter(cmd.OutOrStdout())
			count, err := searchStream(rd, queries, interval, config.GetBool("show-query"), config.GetString("timestamp-layout"), out)
			if flushErr := out.Flush(); err == nil {
				err = flushErr
			}
			if err != nil {
				return err
			}

			l.Debug("search finished",
				zap.Int("matches", count),
				zap.Int("queries", len(queries)),
				zap.Int64("from", int64(interval.Lower)),
				zap.Int64("to", int64(interval.Upper)),
			)

			return nil
		},
	}
	c.Flags().StringArrayP("query", "q", nil, "Wildcard query; repeat the flag to match any of several queries.")
	c.Flags().BoolP("ignore-case", "i", false, "Match case-insensitively.")
	c.Flags().String("from", "", "Inclusive lower time bound, epoch milliseconds or RFC 3339.")
	c.Flags().String("to", "", "Exclusive upper time bound, epoch milliseconds or RFC 3339.")
	c.Flags().Bool("show-query", false, "Prefix each match with the index of the first matching query.")

	return c
}

func searchStream(rd *ir.Reader, queries []search.WildcardQuery, interval search.TimestampInterval,
	showQuery bool, layout string, out io.Writer,
) (int, error) {
	count := 0
	for {
		ev, idx, err := rd.ReadToWildcardMatch(queries, interval)
		if err != nil {
			if isStreamEnd(err, errs.ErrWindowExhausted) {
				return count, nil
			}

			return count, errors.Wrap(err, "failed to search stream")
		}

		if err := writeMatch(out, ev, idx, showQuery, layout); err != nil {
			return count, errors.Wrap(err, "failed to write output")
		}
		count++
	}
}

func writeMatch(out io.Writer, ev event.LogEvent, idx int, showQuery bool, layout string) error {
	var err error
	if showQuery {
		_, err = fmt.Fprintf(out, "[%d] %s\n", idx, formatEvent(ev, layout))
	} else {
		_, err = fmt.Fprintln(out, formatEvent(ev, layout))
	}

	return err
}
