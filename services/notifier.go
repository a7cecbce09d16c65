package services

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type NotificationLevel string

const (
	NotificationInfo    NotificationLevel = "info"
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Event types pushed to connected scoreboards.
const (
	EventNotification    = "NOTIFICATION"
	EventGameUpdated     = "GAME_UPDATED"
	EventStandingsUpdate = "STANDINGS_UPDATED"
	EventChampionDecided = "CHAMPION_DECIDED"
	EventTournamentReset = "TOURNAMENT_RESET"
)

type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notifier surfaces user-facing messages such as persistence failures.
type Notifier interface {
	Notify(level NotificationLevel, message string)
}

// Publisher delivers typed events to every connected client.
type Publisher interface {
	Publish(msgType string, payload interface{})
}

type hubNotifier struct {
	pub Publisher
	log zerolog.Logger
}

func NewHubNotifier(pub Publisher, log zerolog.Logger) Notifier {
	return &hubNotifier{pub: pub, log: log.With().Str("component", "notifier").Logger()}
}

func (n *hubNotifier) Notify(level NotificationLevel, message string) {
	note := NewNotification(level, message)
	n.log.Info().Str("id", note.ID).Str("level", string(level)).Msg(message)
	n.pub.Publish(EventNotification, note)
}

func NewNotification(level NotificationLevel, message string) Notification {
	id, err := gonanoid.New()
	if err != nil {
		id = ""
	}
	return Notification{
		ID:        id,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(NotificationLevel, string) {}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}
