// Package infra groups the adapters behind the core interfaces: the HTTP
// prediction client and mock service, metrics sinks, the MQTT state
// publisher, Redis suggestions and Sentry reporting.
package infra
