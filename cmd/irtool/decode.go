package main

import (
	"bufio"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arloliu/logir/ir"
)

func Decode(config *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <input>",
		Short: "Decode an IR stream back into text lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l := getLogger(config)
			defer l.Sync() //nolint:errcheck

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
			layout := config.GetString("timestamp-layout")
			count := 0
			for {
				ev, err := rd.Read()
				if err != nil {
					if isStreamEnd(err) {
						break
					}
					_ = out.Flush()

					return errors.Wrapf(err, "failed to decode event %d", count+1)
				}
				if _, err := out.WriteString(formatEvent(ev, layout) + "\n"); err != nil {
					return errors.Wrap(err, "failed to write output")
				}
				count++
			}

			l.Debug("decoded log events",
				zap.Int("events", count),
				zap.String("time_zone", rd.TimestampInfo().TimeZoneID),
			)

			return out.Flush()
		},
	}
}
