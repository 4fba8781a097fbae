package events

import (
	"context"
	"encoding/json"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StageTransitionKind string = "reelforge.events.job.stage"
	StageFailureKind    string = "reelforge.events.job.failure"
	ReviewDecisionKind  string = "reelforge.events.job.review"
	PublishOutcomeKind  string = "reelforge.events.job.publish"
	defaultTopic        string = "reelforge.events"
	eventSource         string = "reelforge.orchestrator"
)

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer wraps a Writer with a buffer so emitting an event never
// blocks the caller, even when the writer is slow.
type EventProducer struct {
	buffer           *buffer
	startConsumingCh chan any
	doneCh           chan any
	writer           Writer
	topic            string
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		buffer:           newBuffer(),
		startConsumingCh: make(chan any),
		doneCh:           make(chan any),
		writer:           w,
		topic:            defaultTopic,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

// Emit queues one event of the given kind. The body must be json-able.
func (ep *EventProducer) Emit(kind string, body any) {
	d, err := json.Marshal(body)
	if err != nil {
		zap.S().Named("events").Errorf("failed to marshal %s event: %s", kind, err)
		return
	}

	prevSize := ep.buffer.Size()
	ep.buffer.PushBack(&message{
		Kind: kind,
		Data: d,
	})

	if prevSize == 0 {
		// unblock the consumer and start sending messages
		select {
		case ep.startConsumingCh <- struct{}{}:
		default:
		}
	}
}

func (ep *EventProducer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		ep.doneCh <- struct{}{}
		return ep.writer.Close(ctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Errorf("event producer closed with error: %s", err)
		return err
	}

	zap.S().Named("events").Info("event producer closed")

	return nil
}

func (ep *EventProducer) run() {
	for {
		select {
		case <-ep.doneCh:
			return
		default:
		}

		if ep.buffer.Size() == 0 {
			select {
			case <-ep.startConsumingCh:
			case <-ep.doneCh:
				return
			}
		}

		msg := ep.buffer.Pop()
		if msg == nil {
			continue
		}

		e := cloudevents.NewEvent()
		e.SetID(uuid.NewString())
		e.SetSource(eventSource)
		e.SetType(msg.Kind)
		_ = e.SetData(cloudevents.ApplicationJSON, msg.Data)

		if err := ep.writer.Write(context.TODO(), ep.topic, e); err != nil {
			zap.S().Named("events").Errorw("failed to send event", "error", err, "event", e)
		}
	}
}
