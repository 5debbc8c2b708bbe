// Package relay forwards newly issued bills to Kafka.
package relay

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Shopify/sarama"
	"go.uber.org/zap"

	"github.com/spsworld03/sps-bill-brew/internal/ledger"
)

const DefaultTopic = "bills.issued"

type Relay struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *zap.Logger

	mu      sync.Mutex
	closed  bool
	drained sync.WaitGroup
}

// NewProducerConfig returns the producer settings used for bill events.
func NewProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = "sps-bill-brew"
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Flush.Frequency = 200 * time.Millisecond
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 250 * time.Millisecond
	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true
	return cfg
}

// Dial connects an async producer to brokers, a comma separated list.
func Dial(brokers string, topic string, logger *zap.Logger) (*Relay, error) {
	addrs := make([]string, 0, 4)
	for _, addr := range strings.Split(brokers, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	producer, err := sarama.NewAsyncProducer(addrs, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return New(producer, topic, logger), nil
}

func New(producer sarama.AsyncProducer, topic string, logger *zap.Logger) *Relay {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Relay{producer: producer, topic: topic, logger: logger}
	r.drained.Add(1)
	go r.drainErrors()
	return r
}

// Handle is a ledger.Listener. Only appends are published, so reloads and
// resets never republish old bills while a reused bill number still goes out.
func (r *Relay) Handle(event ledger.Event) {
	if event.Name != ledger.EventBillsUpdated || event.Appended == nil {
		return
	}
	bill := *event.Appended

	value, err := json.Marshal(bill)
	if err != nil {
		r.logger.Error("relay encode failed", zap.String("bill_no", bill.BillNumber), zap.Error(err))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.producer.Input() <- &sarama.ProducerMessage{
		Topic: r.topic,
		Key:   sarama.StringEncoder(bill.BillNumber),
		Value: sarama.ByteEncoder(value),
	}
	r.logger.Debug("bill queued for relay", zap.String("bill_no", bill.BillNumber), zap.String("topic", r.topic))
}

func (r *Relay) drainErrors() {
	defer r.drained.Done()
	for perr := range r.producer.Errors() {
		billNo := ""
		if perr.Msg != nil {
			if key, ok := perr.Msg.Key.(sarama.StringEncoder); ok {
				billNo = string(key)
			}
		}
		r.logger.Warn("relay publish failed",
			zap.String("topic", r.topic),
			zap.String("bill_no", billNo),
			zap.Error(perr.Err),
		)
	}
}

// Close flushes pending messages and waits for the error drain to finish.
func (r *Relay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.producer.Close()
	r.drained.Wait()
	return err
}
