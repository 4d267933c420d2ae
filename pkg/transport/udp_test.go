package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUDPTransportRoundTrip(t *testing.T) {
	a, err := ListenUDP("127.0.0.1", 0)
	require.NoError(t, err)
	defer a.Close()
	b, err := ListenUDP("127.0.0.1", 0)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Send(context.Background(), "supreme_general~order=0", b.Addr()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	dg, err := b.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "supreme_general~order=0", dg.Payload)
	assert.Equal(t, a.Addr(), dg.From)
}

func TestUDPTransportInvalidHost(t *testing.T) {
	_, err := ListenUDP("not-an-ip", 0)
	assert.Error(t, err)
}

func TestUDPTransportClose(t *testing.T) {
	a, err := ListenUDP("127.0.0.1", 0)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	_, err = a.Receive(context.Background())
	assert.ErrorIs(t, err, ErrTransportClosed)
	assert.ErrorIs(t, a.Send(context.Background(), "x", 1), ErrTransportClosed)
}
