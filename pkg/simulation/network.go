package simulation

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/meta-node-blockchain/om-generals/pkg/generals"
	"github.com/meta-node-blockchain/om-generals/pkg/transport"
)

// endpoints là các transport đã mở cho một lần chạy: participants[i] ứng với id i.
type endpoints struct {
	book         *generals.AddressBook
	participants []transport.Transport
	city         transport.Transport
	close        func() error
}

// localBase là địa chỉ đầu tiên trên LocalNetwork; giá trị không quan trọng.
const localBase transport.Address = 1

func openLocal(sc Scenario) (*endpoints, error) {
	n := len(sc.Traitors)
	book, err := generals.SequentialAddressBook(localBase, n)
	if err != nil {
		return nil, err
	}

	var opts []transport.LocalNetworkOption
	if sc.Latency > 0 || sc.Jitter > 0 {
		opts = append(opts, transport.WithLatency(sc.Latency, sc.Jitter, sc.Seed))
	}
	if sc.SendInterval > 0 {
		opts = append(opts, transport.WithSendInterval(sc.SendInterval))
	}
	network := transport.NewLocalNetwork(opts...)

	ep := &endpoints{book: book, participants: make([]transport.Transport, n), close: network.Close}
	for i := 0; i < n; i++ {
		addr, _ := book.Address(generals.ParticipantID(i))
		tr, err := network.Join(addr)
		if err != nil {
			network.Close()
			return nil, err
		}
		ep.participants[i] = tr
	}
	city, err := network.Join(book.City())
	if err != nil {
		network.Close()
		return nil, err
	}
	ep.city = city
	return ep, nil
}

// openUDP mở n+1 socket. BasePort > 0 dùng các cổng liên tiếp base..base+n (City ở
// base+n); BasePort = 0 để hệ điều hành cấp cổng.
func openUDP(sc Scenario) (*endpoints, error) {
	n := len(sc.Traitors)
	var udpOpts []transport.UDPOption
	if sc.SendInterval > 0 {
		udpOpts = append(udpOpts, transport.WithUDPSendInterval(sc.SendInterval))
	}

	opened := make([]*transport.UDPTransport, 0, n+1)
	closeAll := func() error {
		var errs []error
		for _, t := range opened {
			errs = append(errs, t.Close())
		}
		return errors.Join(errs...)
	}

	for i := 0; i <= n; i++ {
		port := 0
		if sc.BasePort > 0 {
			port = sc.BasePort + i
		}
		t, err := transport.ListenUDP(sc.Host, port, udpOpts...)
		if err != nil {
			closeAll()
			return nil, err
		}
		opened = append(opened, t)
	}

	addrs := make([]transport.Address, n)
	ep := &endpoints{participants: make([]transport.Transport, n), close: closeAll}
	for i := 0; i < n; i++ {
		addrs[i] = opened[i].Addr()
		ep.participants[i] = opened[i]
	}
	ep.city = opened[n]
	book, err := generals.NewAddressBook(addrs, opened[n].Addr())
	if err != nil {
		closeAll()
		return nil, err
	}
	ep.book = book
	return ep, nil
}

// RandomBasePort chọn cổng bắt đầu ngẫu nhiên trong [lo, hi).
func RandomBasePort(rng *rand.Rand, lo, hi int) (int, error) {
	if hi <= lo {
		return 0, fmt.Errorf("empty port range [%d, %d)", lo, hi)
	}
	return lo + rng.Intn(hi-lo), nil
}
