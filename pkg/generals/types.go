package generals

import (
	"fmt"

	"github.com/meta-node-blockchain/om-generals/pkg/transport"
)

// ParticipantID là định danh 0..n-1. Id 0 luôn là Commander.
type ParticipantID int

const CommanderID ParticipantID = 0

// CityID là id giả dùng cho Outbound gửi tới City.
const CityID ParticipantID = -1

// Role là vai trò cố định của một participant.
type Role int

const (
	Commander Role = iota
	Lieutenant
)

func (r Role) String() string {
	switch r {
	case Commander:
		return "commander"
	case Lieutenant:
		return "lieutenant"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// RoleOf suy ra vai trò từ id.
func RoleOf(id ParticipantID) Role {
	if id == CommanderID {
		return Commander
	}
	return Lieutenant
}

// State là trạng thái của state machine participant.
//
//	Commander:  AwaitingOrder -> Deciding -> Reported
//	Lieutenant: AwaitingMessages -> Deciding -> Reported
type State int

const (
	StateAwaitingOrder State = iota
	StateAwaitingMessages
	StateDeciding
	StateReported
)

func (s State) String() string {
	switch s {
	case StateAwaitingOrder:
		return "AWAITING_ORDER"
	case StateAwaitingMessages:
		return "AWAITING_MESSAGES"
	case StateDeciding:
		return "DECIDING"
	case StateReported:
		return "REPORTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// --- Faults ---
// FaultKind là các bất thường không chí mạng quan sát được từ người gửi.
type FaultKind string

const (
	// Commander gửi lệnh lần thứ hai; giá trị vẫn được ghi nhận nhưng không relay lại.
	FaultDuplicateCommanderOrder FaultKind = "DuplicateCommanderOrder"
	// Tag người gửi không phải tag hợp lệ hoặc không có trong address book.
	FaultUnknownSender FaultKind = "UnknownSender"
	// Tag người gửi không khớp địa chỉ transport của datagram.
	FaultSenderMismatch FaultKind = "SenderMismatch"
)

type Fault struct {
	SenderTag string
	From      transport.Address
	Kind      FaultKind
}

func (f Fault) Error() string {
	return fmt.Sprintf("fault from %s (%d): %s", f.SenderTag, f.From, f.Kind)
}

// --- Step ---
// Outbound là một thông điệp cần gửi tới một địa chỉ.
type Outbound struct {
	To        transport.Address
	Recipient ParticipantID
	Message   Message
}

// Step là kết quả của một bước xử lý thuần: thông điệp cần gửi, quyết định (nếu vừa có)
// và các fault quan sát được.
type Step struct {
	Messages []Outbound
	Decision *Order
	Faults   []Fault
}
