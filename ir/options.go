package ir

import (
	"fmt"

	"github.com/arloliu/logir/errs"
	"github.com/arloliu/logir/event"
	"github.com/arloliu/logir/internal/options"
)

// config collects the settings shared by serializers, readers and writers. Each
// constructor only reads the fields that apply to it.
type config struct {
	bufferSize         int
	utcOffset          event.EpochTimeMs
	referenceTimestamp *event.EpochTimeMs
	timestampInfo      TimestampInfo
}

// Option configures a Serializer, Reader or Writer.
type Option = options.Option[*config]

func newConfig(opts []Option) (*config, error) {
	cfg := &config{}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithBufferSize sets the initial size of the internal buffer. Buffers still grow on demand.
func WithBufferSize(size int) Option {
	return options.New(func(c *config) error {
		if size <= 0 {
			return fmt.Errorf("%w: buffer size must be positive, got %d", errs.ErrInvalidOption, size)
		}
		c.bufferSize = size

		return nil
	})
}

// WithUtcOffset sets the UTC offset a serializer starts with. A non-zero offset is written
// as a UtcOffsetChange unit right after the preamble.
func WithUtcOffset(offset event.EpochTimeMs) Option {
	return options.NoError(func(c *config) {
		c.utcOffset = offset
	})
}

// WithReferenceTimestamp sets the reference timestamp of a four-byte Writer. It defaults to
// the current time.
func WithReferenceTimestamp(ts event.EpochTimeMs) Option {
	return options.NoError(func(c *config) {
		c.referenceTimestamp = &ts
	})
}

// WithTimestampPattern records how the source formatted its timestamps in the preamble of
// a Writer.
func WithTimestampPattern(pattern string, syntax string) Option {
	return options.NoError(func(c *config) {
		c.timestampInfo.Pattern = pattern
		c.timestampInfo.PatternSyntax = syntax
	})
}
