package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, time.Second*90, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("soon")))
	assert.Equal(t, time.Second*90, d.Std(), "failed decode keeps the old value")
}

func TestURLText(t *testing.T) {
	cases := []struct {
		in  string
		err bool
	}{
		{"https://musicbrainz.org/ws/2/", false},
		{"http://pyroscope:4040", false},
		{"", false},
		{"localhost:4317", true},
		{"ftp://files.example/", true},
		{"http://", true},
		{"/relative/path", true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var u URL
			err := u.UnmarshalText([]byte(c.in))
			if c.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.in, u.String())
		})
	}
}

func TestURLJoin(t *testing.T) {
	u := URL("https://musicbrainz.org/ws/2/")
	assert.Equal(t, "https://musicbrainz.org/ws/2/recording", u.URL().JoinPath("recording").String())
}

func TestListenAddr(t *testing.T) {
	cases := []struct {
		in   string
		want string
		port uint16
		err  bool
	}{
		{"localhost:3241", "localhost:3241", 3241, false},
		{":8080", ":8080", 8080, false},
		{"0.0.0.0:80", "0.0.0.0:80", 80, false},
		{"[::1]:443", "[::1]:443", 443, false},
		{"localhost", "", 0, true},
		{"localhost:99999", "", 0, true},
		{"localhost:http", "", 0, true},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			addr, err := ParseListenAddr(c.in)
			if c.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, addr.String())
			assert.Equal(t, c.port, addr.Port())
		})
	}
}

func TestListenAddrEmptyText(t *testing.T) {
	addr := MustParseListenAddr("localhost:3241")
	require.NoError(t, addr.UnmarshalText(nil))
	assert.Equal(t, "localhost:3241", addr.String())
}
