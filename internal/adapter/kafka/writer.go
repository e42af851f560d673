package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/config"
	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// zoneMessage is the sink topic payload: one zone plus the metadata of the
// run that produced it.
type zoneMessage struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Index       int       `json:"index"`
	domain.DispersedZone
}

// Writer produces zone messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes every zone of the batch in a single WriteMessages call.
// An empty batch publishes nothing.
func (w *Writer) LoadBatch(ctx context.Context, batch domain.ZoneBatch) error {
	if len(batch.Zones) == 0 {
		w.logger.Info("empty zone batch, nothing to publish", "run_id", batch.RunID)
		return nil
	}
	msgs := make([]kafkago.Message, len(batch.Zones))
	for i := range batch.Zones {
		msg, err := serializeToMessage(batch, i)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish zones: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals the i-th zone of a batch into a Kafka message.
func serializeToMessage(batch domain.ZoneBatch, i int) (kafkago.Message, error) {
	zone := batch.Zones[i]
	data, err := json.Marshal(zoneMessage{
		RunID:         batch.RunID,
		GeneratedAt:   batch.GeneratedAt,
		Index:         i,
		DispersedZone: zone,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize zone: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(zoneKey(zone)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(batch.RunID)},
			{Key: "generated_at", Value: []byte(batch.GeneratedAt.Format(time.RFC3339))},
			{Key: "zone_index", Value: []byte(strconv.Itoa(i))},
		},
	}, nil
}

// zoneKey derives a stable key from the fire location so zones for the same
// pixel land on the same partition across runs.
func zoneKey(z domain.DispersedZone) string {
	input := fmt.Sprintf("%.4f|%.4f", z.SourceLat, z.SourceLon)
	hash := sha256.Sum256([]byte(input))
	return "fire-" + hex.EncodeToString(hash[:8])
}
