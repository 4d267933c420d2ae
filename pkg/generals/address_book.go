package generals

import (
	"fmt"

	"github.com/meta-node-blockchain/om-generals/pkg/transport"
)

// AddressBook ánh xạ hai chiều ParticipantID <-> transport.Address. Không đổi sau khi tạo.
type AddressBook struct {
	byID   []transport.Address
	byAddr map[transport.Address]ParticipantID
	city   transport.Address
}

// NewAddressBook tạo address book từ danh sách địa chỉ theo thứ tự id (phần tử 0 là
// Commander) và địa chỉ của City.
func NewAddressBook(addrs []transport.Address, city transport.Address) (*AddressBook, error) {
	if len(addrs) < 2 {
		return nil, fmt.Errorf("%w: need a commander and at least one lieutenant, got %d participants", ErrInvalidAddressBook, len(addrs))
	}
	b := &AddressBook{
		byID:   make([]transport.Address, len(addrs)),
		byAddr: make(map[transport.Address]ParticipantID, len(addrs)),
		city:   city,
	}
	copy(b.byID, addrs)
	for i, a := range addrs {
		if a == city {
			return nil, fmt.Errorf("%w: participant %d shares the city address %d", ErrInvalidAddressBook, i, a)
		}
		if prev, dup := b.byAddr[a]; dup {
			return nil, fmt.Errorf("%w: participants %d and %d share address %d", ErrInvalidAddressBook, prev, i, a)
		}
		b.byAddr[a] = ParticipantID(i)
	}
	return b, nil
}

// SequentialAddressBook cấp n địa chỉ liên tiếp từ base và đặt City ở base+n.
func SequentialAddressBook(base transport.Address, n int) (*AddressBook, error) {
	addrs := make([]transport.Address, n)
	for i := range addrs {
		addrs[i] = base + transport.Address(i)
	}
	return NewAddressBook(addrs, base+transport.Address(n))
}

// Size là số participant (gồm Commander).
func (b *AddressBook) Size() int {
	return len(b.byID)
}

func (b *AddressBook) City() transport.Address {
	return b.city
}

func (b *AddressBook) Address(id ParticipantID) (transport.Address, error) {
	if id < 0 || int(id) >= len(b.byID) {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownParticipant, id)
	}
	return b.byID[id], nil
}

func (b *AddressBook) Participant(addr transport.Address) (ParticipantID, error) {
	id, ok := b.byAddr[addr]
	if !ok {
		return 0, fmt.Errorf("%w: address %d", ErrUnknownParticipant, addr)
	}
	return id, nil
}

// Lieutenants trả về id của mọi Lieutenant theo thứ tự tăng dần.
func (b *AddressBook) Lieutenants() []ParticipantID {
	ids := make([]ParticipantID, 0, len(b.byID)-1)
	for i := 1; i < len(b.byID); i++ {
		ids = append(ids, ParticipantID(i))
	}
	return ids
}

// Peers trả về các Lieutenant khác self, theo thứ tự tăng dần.
func (b *AddressBook) Peers(self ParticipantID) []ParticipantID {
	ids := make([]ParticipantID, 0, len(b.byID)-2)
	for _, id := range b.Lieutenants() {
		if id != self {
			ids = append(ids, id)
		}
	}
	return ids
}
