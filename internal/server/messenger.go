package server

import "context"

// BrokerMessenger delivers engine output over the SSE broker. Whispers go
// only to the target player's topic, never to a group topic.
type BrokerMessenger struct {
	broker *Broker
}

func NewBrokerMessenger(broker *Broker) *BrokerMessenger {
	return &BrokerMessenger{broker: broker}
}

func (m *BrokerMessenger) Broadcast(_ context.Context, groupID, text string) error {
	m.broker.Publish("group:"+groupID, ChatEvent{Type: "group", Text: text})
	return nil
}

func (m *BrokerMessenger) Whisper(_ context.Context, playerID, text string) error {
	m.broker.Publish("player:"+playerID, ChatEvent{Type: "whisper", Text: text})
	return nil
}
