package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
	"github.com/spsworld03/sps-bill-brew/internal/ledger"
	"github.com/spsworld03/sps-bill-brew/internal/slot/memory"
)

func bill(no string) domain.BillRecord {
	return domain.BillRecord{
		BillNumber:   no,
		Date:         "18/10/2026",
		CustomerName: "Anu",
		PaymentMode:  domain.PaymentOnline,
		LineItems:    []domain.LineItem{{Name: "Socks", Quantity: 1, UnitPrice: decimal.NewFromInt(45)}},
		Subtotal:     decimal.NewFromInt(45),
		Total:        decimal.NewFromInt(45),
	}
}

func TestRelayPublishesLatestBill(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, NewProducerConfig())
	producer.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, _ := msg.Key.Encode()
		if string(key) != "SPS01" {
			return errors.New("unexpected key " + string(key))
		}
		value, _ := msg.Value.Encode()
		var decoded domain.BillRecord
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.BillNumber != "SPS01" || !decoded.Total.Equal(decimal.NewFromInt(45)) {
			return errors.New("unexpected payload " + string(value))
		}
		return nil
	})

	store := ledger.New(memory.New(), "", nil)
	r := New(producer, "", nil)
	unsubscribe := store.Subscribe(r.Handle)
	defer unsubscribe()

	store.Append(context.Background(), bill("SPS01"))

	if err := r.Close(); err != nil {
		t.Fatalf("close relay: %v", err)
	}
}

func TestRelaySkipsRepublishAfterReload(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, NewProducerConfig())
	producer.ExpectInputAndSucceed()

	store := ledger.New(memory.New(), "", nil)
	r := New(producer, "bills.test", nil)
	store.Subscribe(r.Handle)

	store.Append(context.Background(), bill("SPS01"))
	store.Replace(store.Snapshot())
	store.Load(context.Background())
	r.Handle(ledger.Event{Name: "somethingElse"})

	if err := r.Close(); err != nil {
		t.Fatalf("close relay: %v", err)
	}
}

func TestRelayLogsProducerErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	producer := mocks.NewAsyncProducer(t, NewProducerConfig())
	producer.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	store := ledger.New(memory.New(), "", nil)
	r := New(producer, "", zap.New(core))
	store.Subscribe(r.Handle)

	store.Append(context.Background(), bill("SPS01"))

	if err := r.Close(); err != nil {
		t.Fatalf("close relay: %v", err)
	}
	entries := logs.FilterMessage("relay publish failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one publish failure log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["bill_no"]; got != "SPS01" {
		t.Fatalf("expected bill_no SPS01 in log, got %v", got)
	}
}

func TestRelayPublishesReusedBillNumberAfterReset(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, NewProducerConfig())
	producer.ExpectInputAndSucceed()
	producer.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		value, _ := msg.Value.Encode()
		var decoded domain.BillRecord
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.BillNumber != "SPS01" || decoded.CustomerName != "Ravi" {
			return errors.New("unexpected payload " + string(value))
		}
		return nil
	})

	ctx := context.Background()
	store := ledger.New(memory.New(), "", nil)
	r := New(producer, "", nil)
	store.Subscribe(r.Handle)

	store.Append(ctx, bill("SPS01"))
	store.Reset(ctx)
	store.Load(ctx)

	again := bill("SPS01")
	again.CustomerName = "Ravi"
	store.Append(ctx, again)

	if err := r.Close(); err != nil {
		t.Fatalf("close relay: %v", err)
	}
}

func TestRelayIgnoresEventsWithoutAppend(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, NewProducerConfig())
	r := New(producer, "", nil)

	r.Handle(ledger.Event{Name: ledger.EventBillsUpdated})

	if err := r.Close(); err != nil {
		t.Fatalf("close relay: %v", err)
	}
}

func TestDialRequiresBrokers(t *testing.T) {
	if _, err := Dial(" , ", "", nil); err == nil {
		t.Fatalf("expected error without brokers")
	}
}
