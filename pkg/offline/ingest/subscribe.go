package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
)

type SubscribeConfig struct {
	// Connect gives up after this. Zero means "retry until ctx is done".
	MaxElapsed time.Duration

	// QoS of the subscription. Default: 1.
	QoS *byte
}

// Subscribe connects to the broker and feeds messages on the topic of conf into h until ctx is done.
//
// The subscription is renewed on every reconnection.
func Subscribe(ctx context.Context, conf *agent.MQTT, topic string, h *Handler, sc SubscribeConfig) error {
	qos := byte(1)
	if sc.QoS != nil {
		qos = *sc.QoS
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(conf.Broker)
	clientId := conf.ClientId
	if clientId == "" {
		clientId = "aquasync"
	}
	opts.SetClientID(clientId)
	if conf.Username != "" {
		opts.SetUsername(conf.Username)
		opts.SetPassword(conf.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		tok := c.Subscribe(topic, qos, h.Callback(ctx))
		if tok.Wait() && tok.Error() != nil {
			h.logger.Error("failed to subscribe", zap.String("topic", topic), zap.Error(tok.Error()))
			return
		}
		h.logger.Info("subscribed", zap.String("broker", conf.Broker), zap.String("topic", topic))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		h.logger.Warn("connection to broker is lost", zap.String("broker", conf.Broker), zap.Error(err))
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = sc.MaxElapsed

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
			h.logger.Warn("failed to connect to broker", zap.String("broker", conf.Broker), zap.Error(tok.Error()))
			return tok.Error()
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", conf.Broker, err)
	}

	<-ctx.Done()
	client.Unsubscribe(topic).WaitTimeout(time.Second)
	client.Disconnect(250)
	return nil
}
