package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "l,t,l,l", c.Generals)
	assert.Equal(t, "RETREAT", c.Order)
	assert.Equal(t, TransportLocal, c.Transport)
	assert.Zero(t, c.ReceiveTimeout)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"generals": "t,l,l,l",
		"order": "ATTACK",
		"transport": "udp",
		"base_port": 12000,
		"receive_timeout": "750ms",
		"send_interval": 1000000,
		"seed": 7,
		"clean_logs": true
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	c, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "t,l,l,l", c.Generals)
	assert.Equal(t, "ATTACK", c.Order)
	assert.Equal(t, TransportUDP, c.Transport)
	assert.Equal(t, 12000, c.BasePort)
	assert.Equal(t, 750*time.Millisecond, c.ReceiveTimeout.Std())
	assert.Equal(t, time.Millisecond, c.SendInterval.Std())
	assert.Equal(t, int64(7), c.Seed)
	assert.True(t, c.CleanLogs)
	// Trường không có trong file giữ mặc định.
	assert.Equal(t, "127.0.0.1", c.Host)
	assert.Equal(t, "logs", c.LogDir)
	require.NoError(t, c.Validate())
}

func TestLoadConfigFromFileErrors(t *testing.T) {
	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"receive_timeout": "soon"}`), 0644))
	_, err = LoadConfigFromFile(path)
	assert.Error(t, err)
}

func TestParseGenerals(t *testing.T) {
	got, err := ParseGenerals("l, t ,L,l")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false}, got)
	assert.Equal(t, "l,t,l,l", FormatGenerals(got))

	_, err = ParseGenerals("l,x,l,l")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *RunConfig){
		"too few generals":  func(c *RunConfig) { c.Generals = "l,l,l" },
		"too many generals": func(c *RunConfig) { c.Generals = "l,l,l,l,l,l,l,l,l,l,l,l,l,l,l,l,l" },
		"bad order":         func(c *RunConfig) { c.Order = "CHARGE" },
		"bad transport":     func(c *RunConfig) { c.Transport = "carrier-pigeon" },
		"negative timeout":  func(c *RunConfig) { c.ReceiveTimeout = Duration(-time.Second) },
		"negative interval": func(c *RunConfig) { c.SendInterval = Duration(-time.Second) },
		"bad log level":     func(c *RunConfig) { c.LogLevel = "loud" },
		"udp without host":  func(c *RunConfig) { c.Transport = TransportUDP; c.Host = "" },
		"udp port overflow": func(c *RunConfig) { c.Transport = TransportUDP; c.BasePort = 65534 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}

	c := DefaultConfig()
	c.Generals = "l,l,l,l,l,l,l"
	assert.NoError(t, c.Validate())
}

func TestDurationJSON(t *testing.T) {
	b, err := Duration(2 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(b))

	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m"`)))
	assert.Equal(t, time.Minute, d.Std())
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))
}
