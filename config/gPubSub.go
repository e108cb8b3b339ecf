package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// SettingsEvent is published after a tenant's site settings change so that
// auxiliary consumers (public site cache, notification bots) can refresh.
type SettingsEvent struct {
	AdminId       string    `json:"admin_id"`
	Action        string    `json:"action"`
	SiteName      string    `json:"site_name,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
	CorrelationId string    `json:"correlation_id,omitempty"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return ""
}

// SettingsTopic returns the topic for settings events; empty disables publishing.
func SettingsTopic() string {
	return stringFromEnv("PUBSUB_SETTINGS_TOPIC")
}

// getPubSubClient lazily creates the shared client. Unlike the DB and Redis
// connections it does not retry: publishing is best-effort.
func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		// Application Default Credentials.
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("pubsub client ready (project_id=%s)", projectID)
	pubsubClient = c
	return c, nil
}

// PublishSettingsEvent publishes evt to PUBSUB_SETTINGS_TOPIC and waits for the
// server ack. It is a no-op when no topic is configured.
func PublishSettingsEvent(ctx context.Context, evt SettingsEvent) error {
	topicName := SettingsTopic()
	if topicName == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := getPubSubClient(ctx)
	if err != nil {
		return err
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"admin_id": evt.AdminId,
			"action":   evt.Action,
		},
	})
	_, err = result.Get(ctx)
	return err
}

// ClosePubSub releases the shared client on shutdown.
func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
