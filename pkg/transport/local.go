// file: pkg/transport/local.go
package transport

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const defaultInboxSize = 64

// LocalNetwork mô phỏng một mạng datagram trong cùng process.
// Mỗi endpoint có một inbox riêng; thông điệp tới inbox đầy sẽ bị loại bỏ như UDP.
type LocalNetwork struct {
	mu        sync.RWMutex
	inboxes   map[Address]chan Datagram
	inboxSize int

	latency time.Duration
	jitter  time.Duration
	rngMu   sync.Mutex
	rng     *rand.Rand

	limiter *rate.Limiter

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// LocalNetworkOption cấu hình một LocalNetwork.
type LocalNetworkOption func(*LocalNetwork)

// WithLatency thêm độ trễ base + [0, jitter) cho mỗi thông điệp.
// Jitter khác 0 làm thứ tự nhận giữa các người gửi thay đổi giữa các lần chạy.
func WithLatency(base, jitter time.Duration, seed int64) LocalNetworkOption {
	return func(n *LocalNetwork) {
		n.latency = base
		n.jitter = jitter
		n.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSendInterval giới hạn tốc độ gửi trên toàn mạng: tối đa một thông điệp mỗi interval.
func WithSendInterval(interval time.Duration) LocalNetworkOption {
	return func(n *LocalNetwork) {
		if interval > 0 {
			n.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithInboxSize đặt dung lượng buffer của mỗi inbox.
func WithInboxSize(size int) LocalNetworkOption {
	return func(n *LocalNetwork) {
		if size > 0 {
			n.inboxSize = size
		}
	}
}

func NewLocalNetwork(opts ...LocalNetworkOption) *LocalNetwork {
	n := &LocalNetwork{
		inboxes:   make(map[Address]chan Datagram),
		inboxSize: defaultInboxSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Join đăng ký một endpoint mới tại addr.
func (n *LocalNetwork) Join(addr Address) (*LocalTransport, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	select {
	case <-n.done:
		return nil, ErrTransportClosed
	default:
	}
	if _, exists := n.inboxes[addr]; exists {
		return nil, fmt.Errorf("%w: %d", ErrAddressInUse, addr)
	}
	inbox := make(chan Datagram, n.inboxSize)
	n.inboxes[addr] = inbox
	return &LocalTransport{
		addr:    addr,
		network: n,
		inbox:   inbox,
	}, nil
}

// Close dừng mạng; các Receive đang chặn trả về ErrTransportClosed.
func (n *LocalNetwork) Close() error {
	// Giữ mu để không deliver nào còn wg.Add sau khi done đã đóng.
	n.mu.Lock()
	n.closeOnce.Do(func() {
		close(n.done)
	})
	n.mu.Unlock()
	n.wg.Wait()
	return nil
}

func (n *LocalNetwork) delay() time.Duration {
	if n.jitter <= 0 {
		return n.latency
	}
	n.rngMu.Lock()
	defer n.rngMu.Unlock()
	return n.latency + time.Duration(n.rng.Int63n(int64(n.jitter)))
}

func (n *LocalNetwork) deliver(ctx context.Context, dg Datagram, to Address) error {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	// Kiểm tra done và wg.Add phải cùng nằm dưới mu, đối xứng với Close.
	n.mu.RLock()
	defer n.mu.RUnlock()
	select {
	case <-n.done:
		return ErrTransportClosed
	default:
	}
	inbox, ok := n.inboxes[to]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAddress, to)
	}

	d := n.delay()
	if d <= 0 {
		push(inbox, dg)
		return nil
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			push(inbox, dg)
		case <-n.done:
		}
	}()
	return nil
}

// push không bao giờ chặn: inbox đầy thì bỏ thông điệp.
func push(inbox chan Datagram, dg Datagram) {
	select {
	case inbox <- dg:
	default:
	}
}

// LocalTransport là một endpoint trên LocalNetwork.
type LocalTransport struct {
	addr    Address
	network *LocalNetwork
	inbox   chan Datagram
	closed  atomic.Bool
}

var _ Transport = (*LocalTransport)(nil)

func (lt *LocalTransport) Addr() Address {
	return lt.addr
}

func (lt *LocalTransport) Send(ctx context.Context, payload string, to Address) error {
	if lt.closed.Load() {
		return ErrTransportClosed
	}
	return lt.network.deliver(ctx, Datagram{Payload: payload, From: lt.addr}, to)
}

func (lt *LocalTransport) Receive(ctx context.Context) (Datagram, error) {
	if lt.closed.Load() {
		return Datagram{}, ErrTransportClosed
	}
	select {
	case dg := <-lt.inbox:
		return dg, nil
	case <-ctx.Done():
		return Datagram{}, ctx.Err()
	case <-lt.network.done:
		return Datagram{}, ErrTransportClosed
	}
}

// Close đánh dấu endpoint đã đóng. Inbox vẫn giữ trên mạng để người gửi không bị lỗi.
func (lt *LocalTransport) Close() error {
	lt.closed.Store(true)
	return nil
}
