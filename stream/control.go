package stream

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/eclipse/paho.mqtt.golang"
)

// ControlMessage is a command received on the control topic.
type ControlMessage struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Control message types.
const (
	ControlResize  = "resize"
	ControlRestart = "restart"
)

// HandleControl applies a JSON control message to the streamer.
func (s *Streamer) HandleControl(payload []byte) error {
	var message ControlMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return fmt.Errorf("decode control message: %w", err)
	}

	switch message.Type {
	case ControlResize:
		if message.Width < 0 || message.Height < 0 {
			return fmt.Errorf("resize to %vx%v: negative size", message.Width, message.Height)
		}
		s.Resize(message.Width, message.Height)
	case ControlRestart:
		s.Restart()
	default:
		return fmt.Errorf("unknown control message type %q", message.Type)
	}
	return nil
}

func (s *Streamer) handleClientMessages(client mqtt.Client, msg mqtt.Message) {
	log.Printf("Received msg %d on %s: %s\n", msg.MessageID(), msg.Topic(), msg.Payload())
	if err := s.HandleControl(msg.Payload()); err != nil {
		log.Println(err)
	}
}

// Subscribe listens for control messages on the configured topic.
func (s *Streamer) Subscribe(client mqtt.Client) error {
	topic := s.config.Mqtt.Topics.Control
	if topic == "" {
		return nil
	}

	token := client.Subscribe(topic, s.config.Mqtt.QoS, s.handleClientMessages)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}
	return nil
}
