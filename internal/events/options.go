package events

// ProducerOptions mutates an EventProducer at construction time.
type ProducerOptions func(e *EventProducer)

// WithOutputTopic routes every emitted event to topic instead of the default.
func WithOutputTopic(topic string) ProducerOptions {
	return func(e *EventProducer) {
		e.topic = topic
	}
}
