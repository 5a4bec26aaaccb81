// Package outbox persists change events between the write path and the
// Kafka broadcaster. Events survive restarts and are re-published until
// acknowledged, giving downstream consumers at-least-once delivery.
package outbox
