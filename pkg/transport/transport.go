// Package transport cung cấp kênh gửi/nhận datagram văn bản giữa các participant.
//
// Giao thức chỉ cần hai thao tác: Send (gửi rồi quên, không xác nhận) và Receive
// (chặn cho tới khi có một datagram). Có hai implementation:
//   - LocalNetwork: mạng cục bộ bằng channel, dùng cho mô phỏng trong một process
//   - UDPTransport: socket UDP thật trên một cổng số
package transport

import (
	"context"
	"errors"
	"strconv"
)

var (
	// ErrTransportClosed cho biết transport đã bị đóng.
	ErrTransportClosed = errors.New("transport is closed")
	// ErrUnknownAddress cho biết địa chỉ đích chưa được đăng ký trên mạng.
	ErrUnknownAddress = errors.New("unknown transport address")
	// ErrAddressInUse cho biết địa chỉ đã được một endpoint khác chiếm.
	ErrAddressInUse = errors.New("transport address already in use")
)

// Address là địa chỉ số (cổng) của một endpoint.
type Address int

func (a Address) String() string { return strconv.Itoa(int(a)) }

// Datagram là một thông điệp nhận được cùng địa chỉ người gửi.
type Datagram struct {
	Payload string
	From    Address
}

// Transport là năng lực mạng mà participant và city cần.
type Transport interface {
	// Addr trả về địa chỉ của endpoint này.
	Addr() Address
	// Send gửi payload tới địa chỉ đích. Không chờ xác nhận, không thử lại.
	Send(ctx context.Context, payload string, to Address) error
	// Receive chặn cho tới khi có một datagram hoặc ctx kết thúc.
	Receive(ctx context.Context) (Datagram, error)
	Close() error
}
