// Package thingsboard implements the device side of a ThingsBoard-compatible
// MQTT device API: telemetry, client attributes, shared attribute
// subscription and requests, and server-side RPC.
//
// Inbound messages are queued by the transport callbacks and delivered to the
// registered handlers only when Loop is called. RPC responses are queued and
// flushed by Loop as well.
package thingsboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benmeehan/climate-node/pkg/mqtt"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Config tunes the client.
type Config struct {
	QOS              byte
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
	MaxMessageSize   int
	InboundQueue     int
	OutboundQueue    int
	Quiesce          uint // ms
}

func (c *Config) applyDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 5 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 1024
	}
	if c.InboundQueue <= 0 {
		c.InboundQueue = 32
	}
	if c.OutboundQueue <= 0 {
		c.OutboundQueue = 32
	}
}

type message struct {
	topic   string
	payload []byte
}

type attributeSubscription struct {
	keys    []string
	handler AttributesHandler
}

// Client is a platform session over an MQTT transport.
type Client struct {
	mqttClient mqtt.MQTTClient
	cfg        Config
	logger     zerolog.Logger

	rpcHandlers cmap.ConcurrentMap[string, RPCHandler]
	pending     cmap.ConcurrentMap[string, attributeSubscription]
	shared      atomic.Pointer[attributeSubscription]

	responseSubscribed atomic.Bool
	requestID          atomic.Uint64

	inbound  chan message
	outbound chan message
	loopMu   sync.Mutex
}

// NewClient creates a client on top of mqttClient.
func NewClient(mqttClient mqtt.MQTTClient, cfg Config, logger zerolog.Logger) *Client {
	cfg.applyDefaults()
	return &Client{
		mqttClient:  mqttClient,
		cfg:         cfg,
		logger:      logger,
		rpcHandlers: cmap.New[RPCHandler](),
		pending:     cmap.New[attributeSubscription](),
		inbound:     make(chan message, cfg.InboundQueue),
		outbound:    make(chan message, cfg.OutboundQueue),
	}
}

// Connect opens a new session. Handlers, pending requests and queued
// messages of any previous session are discarded.
func (c *Client) Connect(ctx context.Context) error {
	c.reset()

	token := c.mqttClient.Connect()
	if err := waitToken(ctx, token, c.cfg.ConnectTimeout); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Connected reports whether the transport holds a connection.
func (c *Client) Connected() bool {
	return c.mqttClient.IsConnected()
}

// Disconnect closes the transport connection if there is one.
func (c *Client) Disconnect() {
	if c.mqttClient.IsConnected() {
		c.mqttClient.Disconnect(c.cfg.Quiesce)
	}
}

// SendTelemetry publishes values as one telemetry message.
func (c *Client) SendTelemetry(values map[string]any) error {
	return c.publishJSON(TopicTelemetry, values)
}

// SendAttributes publishes values as client attributes.
func (c *Client) SendAttributes(values map[string]any) error {
	return c.publishJSON(TopicAttributes, values)
}

// SubscribeRPC registers handlers by method name and subscribes to RPC requests.
func (c *Client) SubscribeRPC(handlers map[string]RPCHandler) error {
	for method, h := range handlers {
		c.rpcHandlers.Set(method, h)
	}
	if err := c.subscribe(TopicRPCRequestFilter); err != nil {
		return fmt.Errorf("subscribe rpc: %w", err)
	}
	c.logger.Debug().Strs("methods", lo.Keys(handlers)).Msg("Subscribed to RPC requests")
	return nil
}

// SubscribeSharedAttributes delivers updates of keys to handler.
func (c *Client) SubscribeSharedAttributes(keys []string, handler AttributesHandler) error {
	c.shared.Store(&attributeSubscription{keys: keys, handler: handler})
	if err := c.subscribe(TopicAttributes); err != nil {
		return fmt.Errorf("subscribe shared attributes: %w", err)
	}
	return nil
}

// RequestSharedAttributes asks for the current values of keys. The reply is
// delivered to handler by Loop.
func (c *Client) RequestSharedAttributes(keys []string, handler AttributesHandler) error {
	if !c.responseSubscribed.Load() {
		if err := c.subscribe(TopicAttributeResponseFilter); err != nil {
			return fmt.Errorf("subscribe attribute responses: %w", err)
		}
		c.responseSubscribed.Store(true)
	}

	id := strconv.FormatUint(c.requestID.Add(1), 10)
	c.pending.Set(id, attributeSubscription{keys: keys, handler: handler})

	err := c.publishJSON(TopicAttributeRequestPrefix+id, AttributeRequest{SharedKeys: strings.Join(keys, ",")})
	if err != nil {
		c.pending.Remove(id)
		return fmt.Errorf("request shared attributes: %w", err)
	}
	return nil
}

// Loop delivers queued inbound messages to their handlers and flushes queued
// outbound messages. It never blocks on an empty queue. Concurrent calls
// return immediately while another Loop is running.
func (c *Client) Loop() {
	if !c.loopMu.TryLock() {
		return
	}
	defer c.loopMu.Unlock()

	for c.dispatchNext() {
	}
	for c.flushNext() {
	}
}

func (c *Client) dispatchNext() bool {
	select {
	case m := <-c.inbound:
		c.dispatch(m)
		return true
	default:
		return false
	}
}

func (c *Client) flushNext() bool {
	select {
	case m := <-c.outbound:
		if err := c.publish(m.topic, m.payload); err != nil {
			c.logger.Warn().Err(err).Str("topic", m.topic).Msg("Dropping queued message")
		}
		return true
	default:
		return false
	}
}

// enqueue is the transport callback for every subscription.
func (c *Client) enqueue(_ MQTT.Client, msg MQTT.Message) {
	if len(msg.Payload()) > c.cfg.MaxMessageSize {
		c.logger.Warn().
			Str("topic", msg.Topic()).
			Int("size", len(msg.Payload())).
			Int("limit", c.cfg.MaxMessageSize).
			Msg("Dropping oversized inbound message")
		return
	}

	m := message{topic: msg.Topic(), payload: append([]byte(nil), msg.Payload()...)}
	select {
	case c.inbound <- m:
	default:
		c.logger.Warn().Str("topic", m.topic).Msg("Inbound queue full, dropping message")
	}
}

func (c *Client) dispatch(m message) {
	switch {
	case strings.HasPrefix(m.topic, TopicRPCRequestPrefix):
		c.dispatchRPC(strings.TrimPrefix(m.topic, TopicRPCRequestPrefix), m.payload)
	case m.topic == TopicAttributes:
		c.dispatchSharedUpdate(m.payload)
	case strings.HasPrefix(m.topic, TopicAttributeResponsePrefix):
		c.dispatchAttributeResponse(strings.TrimPrefix(m.topic, TopicAttributeResponsePrefix), m.payload)
	default:
		c.logger.Debug().Str("topic", m.topic).Msg("Ignoring message on unexpected topic")
	}
}

func (c *Client) dispatchRPC(id string, payload []byte) {
	var req RPCRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.logger.Error().Err(err).Str("request_id", id).Msg("Failed to decode RPC request")
		return
	}

	handler, ok := c.rpcHandlers.Get(req.Method)
	if !ok {
		c.logger.Warn().Str("method", req.Method).Msg("No handler for RPC method")
		return
	}

	resp, err := handler(req.Params)
	if err != nil {
		c.logger.Error().Err(err).Str("method", req.Method).Msg("RPC rejected")
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error().Err(err).Str("method", req.Method).Msg("Failed to encode RPC response")
		return
	}

	select {
	case c.outbound <- message{topic: TopicRPCResponsePrefix + id, payload: body}:
	default:
		c.logger.Warn().Str("method", req.Method).Msg("Outbound queue full, dropping RPC response")
	}
}

func (c *Client) dispatchSharedUpdate(payload []byte) {
	sub := c.shared.Load()
	if sub == nil {
		return
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(payload, &values); err != nil {
		c.logger.Error().Err(err).Msg("Failed to decode shared attribute update")
		return
	}

	deliver(sub, values)
}

func (c *Client) dispatchAttributeResponse(id string, payload []byte) {
	sub, ok := c.pending.Pop(id)
	if !ok {
		c.logger.Debug().Str("request_id", id).Msg("Attribute response without pending request")
		return
	}

	var resp AttributeResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.logger.Error().Err(err).Str("request_id", id).Msg("Failed to decode attribute response")
		return
	}

	deliver(&sub, resp.Shared)
}

func deliver(sub *attributeSubscription, values map[string]json.RawMessage) {
	filtered := lo.PickByKeys(values, sub.keys)
	if len(filtered) == 0 {
		return
	}
	sub.handler(filtered)
}

func (c *Client) publishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	return c.publish(topic, payload)
}

func (c *Client) publish(topic string, payload []byte) error {
	if !c.mqttClient.IsConnected() {
		return ErrNotConnected
	}
	token := c.mqttClient.Publish(topic, c.cfg.QOS, false, payload)
	return waitToken(context.Background(), token, c.cfg.OperationTimeout)
}

func (c *Client) subscribe(topic string) error {
	if !c.mqttClient.IsConnected() {
		return ErrNotConnected
	}
	token := c.mqttClient.Subscribe(topic, c.cfg.QOS, c.enqueue)
	return waitToken(context.Background(), token, c.cfg.OperationTimeout)
}

func (c *Client) reset() {
	c.rpcHandlers.Clear()
	c.pending.Clear()
	c.shared.Store(nil)
	c.responseSubscribed.Store(false)

	for {
		select {
		case <-c.inbound:
		case <-c.outbound:
		default:
			return
		}
	}
}

// waitToken waits for token to complete, ctx to end or timeout to elapse.
func waitToken(ctx context.Context, token MQTT.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTimeout
	}
}
