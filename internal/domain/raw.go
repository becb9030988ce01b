package domain

import (
	"context"
	"time"
)

// RawAlert is an unprocessed alert message from the source topic.
type RawAlert struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// WireFormat reads the dialect hint from the message headers, falling back to
// payload sniffing when the producer did not set one.
func (r RawAlert) WireFormat() Format {
	switch r.Headers["format"] {
	case "json":
		return FormatJSON
	case "xml":
		return FormatXML
	default:
		return FormatAuto
	}
}
