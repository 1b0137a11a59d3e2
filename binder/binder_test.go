package binder

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-settings/check"
	"github.com/goliatone/go-settings/logger"
	"github.com/goliatone/go-settings/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverConfig(t *testing.T) *settings.Config {
	t.Helper()
	cfg, err := settings.New().
		AddItem("server.port").
		OfType(reflect.TypeFor[int]()).
		WithDefault(8080).
		WithValidator(func(c *check.Checker) {
			c.RequireIntegerBetween(1, 65535)
		}).
		AddItem("server.host").
		OfType(reflect.TypeFor[string]()).
		WithDefault("localhost").
		WithValidator(func(c *check.Checker) {
			c.RequireNonEmptyString()
		}).
		AddItem("server.timeout").
		OfType(reflect.TypeFor[time.Duration]()).
		WithDefault(30 * time.Second).
		Build()
	require.NoError(t, err)
	return cfg
}

func testBinder() *Binder {
	// no fallback file source, quiet logs
	return New().WithConfigPath("").WithLogger(logger.Noop{})
}

func TestBindFromValues(t *testing.T) {
	cfg := serverConfig(t)

	err := testBinder().
		WithSource(ValuesSource(map[string]any{
			"server": map[string]any{
				"host": "example.com",
				"port": 9090,
			},
		})).
		Bind(context.Background(), cfg)
	require.NoError(t, err)

	port, err := settings.Value[int](cfg, "server.port")
	require.NoError(t, err)
	assert.Equal(t, 9090, port)

	host, err := settings.Value[string](cfg, "server.host")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)

	// keys absent from every source keep their default
	timeout, err := settings.Value[time.Duration](cfg, "server.timeout")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestBindCoercesRawStrings(t *testing.T) {
	cfg := serverConfig(t)

	err := testBinder().
		WithSource(ValuesSource(map[string]any{
			"server.port":    "9090",
			"server.timeout": "45s",
		})).
		Bind(context.Background(), cfg)
	require.NoError(t, err)

	port, _ := settings.Value[int](cfg, "server.port")
	assert.Equal(t, 9090, port)

	timeout, _ := settings.Value[time.Duration](cfg, "server.timeout")
	assert.Equal(t, 45*time.Second, timeout)
}

func TestBindPriorityOrdering(t *testing.T) {
	cfg := serverConfig(t)

	err := testBinder().
		WithSource(
			ValuesSource(map[string]any{"server.port": 1111}, int(PriorityValues)+10),
			ValuesSource(map[string]any{"server.port": 2222}, int(PriorityValues)),
		).
		Bind(context.Background(), cfg)
	require.NoError(t, err)

	// the higher-priority source loads last and wins
	port, _ := settings.Value[int](cfg, "server.port")
	assert.Equal(t, 1111, port)
}

func TestBindRejectedValueKeepsPrior(t *testing.T) {
	cfg := serverConfig(t)
	require.NoError(t, cfg.SetValue("server.port", 9090))

	err := testBinder().
		WithSource(ValuesSource(map[string]any{"server.port": 70000})).
		Bind(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")

	port, _ := settings.Value[int](cfg, "server.port")
	assert.Equal(t, 9090, port, "rejected source value must not replace the committed one")
}

func TestBindCollectsRejectionsWithoutFailFast(t *testing.T) {
	cfg := serverConfig(t)

	err := testBinder().
		WithFailFast(false).
		WithSource(ValuesSource(map[string]any{
			"server.port": 70000,
			"server.host": "",
		})).
		Bind(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "server.host")
}

func TestBindIgnoresUnregisteredKeys(t *testing.T) {
	cfg := serverConfig(t)

	err := testBinder().
		WithSource(ValuesSource(map[string]any{
			"server.port": 9090,
			"unrelated":   "value",
		})).
		Bind(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, cfg.HasEntry("unrelated"))
}

func TestBindResolvesVariableReferences(t *testing.T) {
	cfg, err := settings.New().
		AddItem("base.url").
		OfType(reflect.TypeFor[string]()).
		AddItem("health.url").
		OfType(reflect.TypeFor[string]()).
		Build()
	require.NoError(t, err)

	err = testBinder().
		WithSource(ValuesSource(map[string]any{
			"base.url":   "http://localhost:3333",
			"health.url": "${base.url}/health",
		})).
		Bind(context.Background(), cfg)
	require.NoError(t, err)

	health, _ := settings.Value[string](cfg, "health.url")
	assert.Equal(t, "http://localhost:3333/health", health)
}

func TestBindEvaluatesExpressions(t *testing.T) {
	cfg, err := settings.New().
		AddItem("app.env").
		OfType(reflect.TypeFor[string]()).
		AddItem("app.debug").
		OfType(reflect.TypeFor[bool]()).
		Build()
	require.NoError(t, err)

	err = testBinder().
		WithSource(ValuesSource(map[string]any{
			"app.env":   "development",
			"app.debug": `{{ app.env == "development" }}`,
		})).
		Bind(context.Background(), cfg)
	require.NoError(t, err)

	debug, err := settings.Value[bool](cfg, "app.debug")
	require.NoError(t, err)
	assert.True(t, debug)
}

func TestBindNoSourcesNoFallbackIsNoop(t *testing.T) {
	cfg := serverConfig(t)

	err := testBinder().Bind(context.Background(), cfg)
	require.NoError(t, err)

	port, _ := settings.Value[int](cfg, "server.port")
	assert.Equal(t, 8080, port)
}

func TestBindRebindReplacesState(t *testing.T) {
	cfg := serverConfig(t)

	b := testBinder().
		WithSource(ValuesSource(map[string]any{"server.port": 9090}))
	require.NoError(t, b.Bind(context.Background(), cfg))

	b2 := testBinder().
		WithSource(ValuesSource(map[string]any{"server.port": 9191}))
	require.NoError(t, b2.Bind(context.Background(), cfg))

	port, _ := settings.Value[int](cfg, "server.port")
	assert.Equal(t, 9191, port)
}
