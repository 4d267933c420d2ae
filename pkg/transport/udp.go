package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxDatagramSize đủ lớn cho mọi thông điệp của giao thức.
const maxDatagramSize = 1024

// UDPTransport là một endpoint UDP trên host:port. Địa chỉ của các endpoint khác
// là số cổng trên cùng host.
type UDPTransport struct {
	host    net.IP
	conn    *net.UDPConn
	addr    Address
	limiter *rate.Limiter

	inbox     chan Datagram
	errs      chan error
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ Transport = (*UDPTransport)(nil)

// UDPOption cấu hình một UDPTransport.
type UDPOption func(*UDPTransport)

// WithUDPSendInterval giới hạn endpoint gửi tối đa một datagram mỗi interval.
func WithUDPSendInterval(interval time.Duration) UDPOption {
	return func(t *UDPTransport) {
		if interval > 0 {
			t.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// ListenUDP mở socket UDP tại host:port. Port 0 để hệ điều hành chọn cổng.
func ListenUDP(host string, port int, opts ...UDPOption) (*UDPTransport, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("invalid UDP host %q", host)
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s:%d: %w", host, port, err)
	}

	t := &UDPTransport{
		host:  ip,
		conn:  conn,
		addr:  Address(conn.LocalAddr().(*net.UDPAddr).Port),
		inbox: make(chan Datagram, defaultInboxSize),
		errs:  make(chan error, 1),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.wg.Add(1)
	go t.readLoop()
	return t, nil
}

func (t *UDPTransport) readLoop() {
	defer t.wg.Done()
	buf := make([]byte, maxDatagramSize)
	for {
		n, from, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case t.errs <- err:
			default:
			}
			return
		}
		dg := Datagram{Payload: string(buf[:n]), From: Address(from.Port)}
		select {
		case t.inbox <- dg:
		case <-t.done:
			return
		}
	}
}

func (t *UDPTransport) Addr() Address {
	return t.addr
}

func (t *UDPTransport) Send(ctx context.Context, payload string, to Address) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	_, err := t.conn.WriteToUDP([]byte(payload), &net.UDPAddr{IP: t.host, Port: int(to)})
	if err != nil {
		return fmt.Errorf("failed to send datagram to %d: %w", to, err)
	}
	return nil
}

func (t *UDPTransport) Receive(ctx context.Context) (Datagram, error) {
	select {
	case dg := <-t.inbox:
		return dg, nil
	case err := <-t.errs:
		return Datagram{}, fmt.Errorf("udp read failed: %w", err)
	case <-ctx.Done():
		return Datagram{}, ctx.Err()
	case <-t.done:
		return Datagram{}, ErrTransportClosed
	}
}

func (t *UDPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		err = t.conn.Close()
		t.wg.Wait()
	})
	return err
}
