package services

// Notifier pushes one-shot events to connected sessions. Delivery is best effort:
// offline recipients simply miss the event.
type Notifier interface {
	NotifyUser(userID, event string, payload interface{})
	NotifyTopic(topic, event string, payload interface{})
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) NotifyUser(string, string, interface{})  {}
func (NopNotifier) NotifyTopic(string, string, interface{}) {}
