// Package pubsub fans site-configuration changes out to every running API
// instance through Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/logger"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
)

const (
	ackDeadlineSeconds = 20
	minSubscriptionTTL = 24 * time.Hour
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errTopicRequired     = errors.New("pubsub settings topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")

	invalidIDChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.~+%]+`)
)

// Client owns the topic handle and the subscription private to this instance.
// Every instance needs its own subscription; a shared one would deliver each
// change to a single instance only.
type Client struct {
	client       *pubsub.Client
	projectID    string
	topic        string
	subscription string
	logg         *logger.Logger
}

// NewClient checks that the settings topic exists and creates (or reuses) the
// subscription for instance. Pub/Sub drops the subscription on its own once it
// has been idle for cfg.SubscriptionTTL, which covers instances that crash
// before Close.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, instance string, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(cfg.SettingsTopic) == "" {
		return nil, errTopicRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:       psClient,
		projectID:    gcp.ProjectID,
		topic:        resourceName(gcp.ProjectID, "topics", cfg.SettingsTopic),
		subscription: resourceName(gcp.ProjectID, "subscriptions", instanceSubscriptionID(cfg.SettingsSubscription, instance)),
		logg:         logg,
	}

	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}
	if err := c.ensureSubscription(ctx, cfg.SubscriptionTTL); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"topic":        c.topic,
			"subscription": c.subscription,
		}), "pubsub client initialized")
	}
	return c, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	default:
		return nil
	}
}

func (c *Client) ensureSubscription(ctx context.Context, ttl time.Duration) error {
	if ttl < minSubscriptionTTL {
		ttl = minSubscriptionTTL
	}
	_, err := c.client.SubscriptionAdminClient.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:               c.subscription,
		Topic:              c.topic,
		AckDeadlineSeconds: ackDeadlineSeconds,
		ExpirationPolicy:   &pubsubpb.ExpirationPolicy{Ttl: durationpb.New(ttl)},
		// stale changes are useless to a fresh instance, it loads settings on boot
		MessageRetentionDuration: durationpb.New(10 * time.Minute),
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating subscription %q: %w", c.subscription, err)
	}
	return nil
}

// SettingsPublisher returns the publisher for site configuration changes.
func (c *Client) SettingsPublisher() *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Publisher(c.topic)
}

// SettingsSubscription returns this instance's subscriber for configuration
// changes.
func (c *Client) SettingsSubscription() *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Subscriber(c.subscription)
}

// Ping backs the readiness probe by looking up the settings topic.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	_, err := c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("topic %q does not exist", c.topic)
	}
	if err != nil {
		return fmt.Errorf("checking topic %q: %w", c.topic, err)
	}
	return nil
}

// Close deletes this instance's subscription and releases the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.client.SubscriptionAdminClient.DeleteSubscription(ctx, &pubsubpb.DeleteSubscriptionRequest{Subscription: c.subscription})
	if err != nil && status.Code(err) != codes.NotFound && c.logg != nil {
		// expiration policy collects it later
		c.logg.Warn(c.logg.WithField(ctx, "subscription", c.subscription), "pubsub subscription not deleted: "+err.Error())
	}
	return c.client.Close()
}

// instanceSubscriptionID appends the instance name to prefix and strips
// characters Pub/Sub does not accept in resource IDs.
func instanceSubscriptionID(prefix, instance string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "its27-settings"
	}
	instance = invalidIDChars.ReplaceAllString(strings.TrimSpace(instance), "-")
	instance = strings.Trim(instance, "-")
	if instance == "" {
		return prefix
	}
	return prefix + "-" + instance
}

// resourceName expands id to projects/<project>/<kind>/<id> unless it already
// is a full resource name.
func resourceName(projectID, kind, id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "projects/") && strings.Contains(id, "/"+kind+"/") {
		return id
	}
	return fmt.Sprintf("projects/%s/%s/%s", strings.TrimSpace(projectID), kind, id)
}
