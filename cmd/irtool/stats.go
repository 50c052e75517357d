package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/format"
	"github.com/arloliu/logir/internal/collision"
	"github.com/arloliu/logir/ir"
)

// streamStats summarizes the log events of a stream.
type streamStats struct {
	events    int
	first     event.EpochTimeMs
	last      event.EpochTimeMs
	dictBytes int
	logtypes  *collision.Tracker
}

type logtypeCount struct {
	id       uint64
	count    int
	template string
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += uint64(n) //nolint:gosec

	return n, err
}

func getTable(header []string, out io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	return table
}

func Stats(config *viper.Viper) *cobra.Command {
	c := &cobra.Command{
		Use:   "stats <input>",
		Short: "Print event counts and the most frequent logtypes of an IR stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(config, args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			counter := &countingReader{r: in}
			rd, err := ir.NewReader(counter)
			if err != nil {
				return errors.Wrap(err, "failed to read preamble")
			}
			defer rd.Close()

			stats, err := collectStats(rd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			summary := getTable([]string{"Property", "Value"}, out)
			summary.Append([]string{"Encoding", rd.Preamble().Width.String()})
			summary.Append([]string{"Time zone", rd.TimestampInfo().TimeZoneID})
			summary.Append([]string{"Events", humanize.Comma(int64(stats.events))})
			summary.Append([]string{"Logtypes", humanize.Comma(int64(stats.logtypes.Count()))})
			if stats.logtypes.HasCollision() {
				summary.Append([]string{"Logtype ID collisions", humanize.Comma(int64(stats.logtypes.Collisions()))})
			}
			summary.Append([]string{"Dictionary bytes", humanize.Bytes(uint64(stats.dictBytes))}) //nolint:gosec
			summary.Append([]string{"IR size", humanize.Bytes(counter.n)})
			if args[0] != "-" {
				if info, err := os.Stat(args[0]); err == nil {
					summary.Append([]string{"File size", humanize.Bytes(uint64(info.Size()))}) //nolint:gosec
				}
			}
			if stats.events > 0 {
				summary.Append([]string{"First event", stats.first.Time().Format(defaultTimestampLayout)})
				summary.Append([]string{"Last event", stats.last.Time().Format(defaultTimestampLayout)})
			}
			summary.Render()

			fmt.Fprintln(out)
			table := getTable([]string{"ID", "Count", "Share", "Logtype"}, out)
			for _, lc := range topLogtypes(stats, config.GetInt("top")) {
				share := float64(lc.count) / float64(stats.events) * 100
				table.Append([]string{
					fmt.Sprintf("%016x", lc.id),
					humanize.Comma(int64(lc.count)),
					fmt.Sprintf("%.1f%%", share),
					lc.template,
				})
			}
			table.Render()

			return nil
		},
	}
	c.Flags().Int("top", 10, "Number of logtypes to list.")

	return c
}

func collectStats(rd *ir.Reader) (*streamStats, error) {
	stats := &streamStats{logtypes: collision.NewTracker()}
	for {
		view, err := rd.ReadEncoded()
		if err != nil {
			if isStreamEnd(err) {
				return stats, nil
			}

			return nil, errors.Wrapf(err, "failed to decode event %d", stats.events+1)
		}

		if stats.events == 0 {
			stats.first = view.Timestamp
		}
		stats.last = view.Timestamp
		stats.events++
		stats.dictBytes += len(view.DictVars)
		stats.logtypes.Track(view.Logtype)
	}
}

// topLogtypes returns up to n logtypes, most frequent first.
func topLogtypes(stats *streamStats, n int) []logtypeCount {
	ids := stats.logtypes.IDs()
	counts := make([]logtypeCount, 0, len(ids))
	for _, id := range ids {
		logtype, _ := stats.logtypes.Logtype(id)
		counts = append(counts, logtypeCount{
			id:       id,
			count:    stats.logtypes.Occurrences(id),
			template: describeLogtype([]byte(logtype)),
		})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })

	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}

	return counts
}

// describeLogtype renders placeholders as <int>, <float> and <dict> and removes escapes.
func describeLogtype(logtype []byte) string {
	var sb strings.Builder
	sb.Grow(len(logtype) + 16)

	for i := 0; i < len(logtype); i++ {
		switch c := logtype[i]; c {
		case format.PlaceholderInteger:
			sb.WriteString("<int>")
		case format.PlaceholderFloat:
			sb.WriteString("<float>")
		case format.PlaceholderDictionary:
			sb.WriteString("<dict>")
		case format.PlaceholderEscape:
			if i+1 < len(logtype) {
				i++
				sb.WriteByte(logtype[i])
			}
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}
