package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/letter-journeys/internal/config"
	"github.com/couchcryptid/letter-journeys/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Table names used as message keys and in the "table" header.
const (
	TableCalendar = "calendar"
	TablePairs    = "pairs"
	TableShares   = "shares"
	TableRegions  = "regions"
)

// Writer publishes each snapshot table to the sink topic.
// It implements pipeline.Loader.
type Writer struct {
	writer   *kafkago.Writer
	maxBytes int
	logger   *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchBytes:   int64(cfg.KafkaMaxMessageBytes),
	}
	return &Writer{writer: w, maxBytes: cfg.KafkaMaxMessageBytes, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Load publishes one message per derived table in a single WriteMessages
// call. Keying by table name keeps successive versions of a table on one
// partition, in order.
func (w *Writer) Load(ctx context.Context, snap domain.Snapshot) error {
	msgs, err := snapshotMessages(snap)
	if err != nil {
		return err
	}
	if err := checkSizes(msgs, w.maxBytes); err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	w.logger.Debug("snapshot published to kafka", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// snapshotMessages serializes the snapshot tables. The regions table is
// omitted when region counting is disabled.
func snapshotMessages(snap domain.Snapshot) ([]kafkago.Message, error) {
	tables := []struct {
		name string
		rows any
	}{
		{TableCalendar, nonNil(snap.Calendar)},
		{TablePairs, nonNil(snap.Pairs)},
		{TableShares, nonNil(snap.Shares)},
	}
	if snap.Regions != nil {
		tables = append(tables, struct {
			name string
			rows any
		}{TableRegions, snap.Regions})
	}

	msgs := make([]kafkago.Message, 0, len(tables))
	for _, t := range tables {
		msg, err := serializeToMessage(t.name, t.rows, snap)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeToMessage marshals one table into a Kafka message.
func serializeToMessage(table string, rows any, snap domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s table: %w", table, err)
	}
	return kafkago.Message{
		Key:   []byte(table),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "table", Value: []byte(table)},
			{Key: "generated_at", Value: []byte(snap.GeneratedAt.Format(time.RFC3339))},
			{Key: "records", Value: []byte(strconv.Itoa(snap.Records))},
		},
	}, nil
}

// messageOverhead approximates the per-record framing kafka-go counts
// against BatchBytes in addition to key, value, and headers.
const messageOverhead = 64

// checkSizes rejects the whole snapshot when any table exceeds maxBytes, so
// the topic never holds a partial set of tables for one snapshot. A zero
// limit disables the check.
func checkSizes(msgs []kafkago.Message, maxBytes int) error {
	if maxBytes <= 0 {
		return nil
	}
	for _, m := range msgs {
		size := messageOverhead + len(m.Key) + len(m.Value)
		for _, h := range m.Headers {
			size += len(h.Key) + len(h.Value)
		}
		if size > maxBytes {
			return fmt.Errorf("%s table is %d bytes, over the %d byte limit (KAFKA_MAX_MESSAGE_BYTES)", m.Key, size, maxBytes)
		}
	}
	return nil
}

// nonNil encodes empty tables as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
