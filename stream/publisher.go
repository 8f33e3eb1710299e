package stream

import (
	"encoding"
	"fmt"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// A Publisher delivers payloads to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MqttPublisher publishes over a paho MQTT client.
type MqttPublisher struct {
	client mqtt.Client
	qos    byte
}

// NewMqttPublisher creates an instance of a MqttPublisher.
func NewMqttPublisher(client mqtt.Client, qos byte) *MqttPublisher {
	p := new(MqttPublisher)
	p.client = client
	p.qos = qos
	return p
}

// Publish sends payload and waits for the broker to accept it.
func (p *MqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func publishBinary(p Publisher, topic string, m encoding.BinaryMarshaler) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return p.Publish(topic, b)
}
