package notify

import "rollcall/internal/participant"

// Dispatcher fans an accepted record out to the in-process hub and, when
// configured, to the Kafka mirror. It satisfies the registration service's
// Broadcaster port.
type Dispatcher struct {
	Hub   *Hub
	Kafka *KafkaPublisher
}

func (d *Dispatcher) Broadcast(rec participant.Record) {
	d.Hub.Broadcast(rec)
	if d.Kafka != nil {
		d.Kafka.Publish(rec)
	}
}
