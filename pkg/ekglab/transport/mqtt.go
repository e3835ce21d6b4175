package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttQoS = 1

// MQTTSink publishes each line on a topic with QoS 1.
type MQTTSink struct {
	mu     sync.Mutex
	client mqtt.Client
	topic  string
	closed bool
}

func ConnectMQTT(broker, topic string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("ekglab-%d", time.Now().UnixNano()))
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt %s: %w", broker, token.Error())
	}
	return &MQTTSink{client: client, topic: topic}, nil
}

func (s *MQTTSink) Send(ctx context.Context, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	token := s.client.Publish(s.topic, mqttQoS, false, line)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MQTTSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Disconnect(250)
	return nil
}
