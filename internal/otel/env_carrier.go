package otel

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Read-only carrier over process environment variables.
//
// Lets a wrapping script hand its trace context to a dataform invocation, for example
// DATAFORM_OTEL_TRACEPARENT=00-<trace id>-<span id>-01. Values set on the carrier shadow the environment.
type EnvCarrier struct {
	vars map[string]string
}

// Ensure `EnvCarrier` implements [propagation.TextMapCarrier]
var _ propagation.TextMapCarrier = (*EnvCarrier)(nil)

func CreateEnvCarrier() EnvCarrier {
	return EnvCarrier{vars: make(map[string]string)}
}

const envPrefix = "DATAFORM_OTEL_"

// prepend prefix and replace all - with _
func mapKey(key string) string {
	return fmt.Sprintf("%s%s", envPrefix, strings.ToUpper(strings.ReplaceAll(key, "-", "_")))
}

// strip prefix and replace all _ with - which might break if the original key contained _ intentionally
func unmapKey(mappedKey string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(mappedKey, envPrefix), "_", "-"))
}

func (c EnvCarrier) Get(key string) string {
	key = mapKey(key)
	if value, ok := c.vars[key]; ok {
		return value
	}

	return os.Getenv(key)
}

func (c EnvCarrier) Set(key string, value string) {
	c.vars[mapKey(key)] = value
}

func (c EnvCarrier) Keys() []string {
	keysSet := make(map[string]bool, len(c.vars))

	for name := range c.vars {
		keysSet[unmapKey(name)] = true
	}

	for _, env := range os.Environ() {
		name, _, _ := strings.Cut(env, "=")
		if !strings.HasPrefix(name, envPrefix) {
			continue
		}

		keysSet[unmapKey(name)] = true
	}

	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}

	return keys
}

// ExtractFromEnv returns a context carrying whatever trace context the environment provides
func ExtractFromEnv(ctx context.Context) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, CreateEnvCarrier())
}
