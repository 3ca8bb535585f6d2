package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	app := &cli.App{Flags: Flags}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(app, set, nil)
}

func TestFromContextDefaults(t *testing.T) {
	c := newTestContext(t)
	cfg, err := FromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
	assert.Equal(t, uint32(8080), cfg.ServerPort)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr())
	assert.Equal(t, uint32(4), cfg.NumWorkers)
	assert.Equal(t, 5.0, cfg.FailPercentageThreshold)
}

func TestFromContextRejectsZeroWorkers(t *testing.T) {
	c := newTestContext(t, "--num-workers=0")
	_, err := FromContext(c)
	assert.Error(t, err)
}

func TestFromContextRejectsOutOfRangeThreshold(t *testing.T) {
	c := newTestContext(t, "--fail-percentage-threshold=150")
	_, err := FromContext(c)
	assert.Error(t, err)
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{RedisAddress: "redis.internal", RedisPort: "6380"}
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr())
}
