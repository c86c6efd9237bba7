package qbo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go"
)

// Change operations used as the last subject token.
const (
	ChangeUpsert = "upsert"
	ChangeDelete = "delete"

	// DefaultSubjectPrefix prefixes every change subject.
	DefaultSubjectPrefix = "qbo.changes"

	headerEntity    = "Qbo-Entity"
	headerOperation = "Qbo-Operation"
)

// Static errors for err113 compliance.
var (
	ErrPublisherRequired = errors.New("publisher is required")
)

// Publisher sends a single message. *nats.Conn satisfies it.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// ChangeEvent is the body of a published change.
type ChangeEvent struct {
	Entity    string `json:"entity"`
	Operation string `json:"operation"`
	Record    Record `json:"record"`
}

// ChangePublisher fans a change feed out to NATS, one message per record,
// on subjects of the form <prefix>.<entity>.<upsert|delete>.
type ChangePublisher struct {
	publisher Publisher
	prefix    string
	logger    Logger
}

// NewChangePublisher creates a publisher. An empty prefix selects
// DefaultSubjectPrefix; a nil logger discards log output.
func NewChangePublisher(publisher Publisher, prefix string, logger Logger) (*ChangePublisher, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}

	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	if logger == nil {
		logger = NopLogger{}
	}

	return &ChangePublisher{
		publisher: publisher,
		prefix:    strings.TrimSuffix(prefix, "."),
		logger:    logger,
	}, nil
}

// ConnectChangePublisher dials a NATS server and wraps the connection. The
// caller owns the returned connection and must close it.
func ConnectChangePublisher(url, prefix string, logger Logger, opts ...nats.Option) (*ChangePublisher, *nats.Conn, error) {
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	publisher, err := NewChangePublisher(conn, prefix, logger)
	if err != nil {
		conn.Close()

		return nil, nil, err
	}

	return publisher, conn, nil
}

// Subject returns the subject a change of entity is published on.
func (p *ChangePublisher) Subject(entity, operation string) string {
	return p.prefix + "." + strings.ToLower(entity) + "." + operation
}

// Publish sends every record of the feed, entities in name order, upserts
// before deletes. It stops at the first failure or when ctx is done and
// returns the number of messages sent.
func (p *ChangePublisher) Publish(ctx context.Context, changes *CDCResponse) (int, error) {
	sent := 0

	for _, bucket := range []struct {
		operation string
		records   map[string][]Record
	}{
		{ChangeUpsert, changes.Upsert},
		{ChangeDelete, changes.Delete},
	} {
		for _, entity := range sortedKeys(bucket.records) {
			for _, record := range bucket.records[entity] {
				err := ctx.Err()
				if err != nil {
					return sent, fmt.Errorf("publishing changes: %w", err)
				}

				err = p.publish(entity, bucket.operation, record)
				if err != nil {
					return sent, err
				}

				sent++
			}
		}
	}

	p.logger.Info("Published change feed", map[string]interface{}{
		"messages": sent,
		"prefix":   p.prefix,
	})

	return sent, nil
}

func (p *ChangePublisher) publish(entity, operation string, record Record) error {
	body, err := json.Marshal(ChangeEvent{Entity: entity, Operation: operation, Record: record})
	if err != nil {
		return fmt.Errorf("encoding %s %s change: %w", entity, operation, err)
	}

	msg := nats.NewMsg(p.Subject(entity, operation))
	msg.Data = body
	msg.Header.Set(headerEntity, entity)
	msg.Header.Set(headerOperation, operation)

	if id, ok := record["Id"]; ok {
		msg.Header.Set(nats.MsgIdHdr, fmt.Sprintf("%s.%v.%s", entity, id, operation))
	}

	err = p.publisher.PublishMsg(msg)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", msg.Subject, err)
	}

	p.logger.Debug("Published change", map[string]interface{}{
		"subject": msg.Subject,
	})

	return nil
}

func sortedKeys(m map[string][]Record) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
