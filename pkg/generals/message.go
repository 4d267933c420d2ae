package generals

import (
	"fmt"
	"strconv"
	"strings"
)

// Định dạng trên dây: "<senderTag>~<key>=<0|1>".
const (
	CommanderTag        = "supreme_general"
	lieutenantTagPrefix = "general_"

	fieldSeparator = "~"
	keyValueSep    = "="
	keyOrder       = "order"
	keyAction      = "action"
)

// SenderTag trả về tag định danh người gửi cho participant id.
func SenderTag(id ParticipantID) string {
	if id == CommanderID {
		return CommanderTag
	}
	return lieutenantTagPrefix + strconv.Itoa(int(id))
}

// ParseSenderTag là hàm ngược của SenderTag.
func ParseSenderTag(tag string) (ParticipantID, error) {
	if tag == CommanderTag {
		return CommanderID, nil
	}
	rest, ok := strings.CutPrefix(tag, lieutenantTagPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: unknown sender tag %q", ErrUnknownParticipant, tag)
	}
	id, err := strconv.Atoi(rest)
	// Chỉ chấp nhận dạng chuẩn do SenderTag sinh ra: không dấu, không số 0 ở đầu.
	if err != nil || id <= int(CommanderID) || strconv.Itoa(id) != rest {
		return 0, fmt.Errorf("%w: unknown sender tag %q", ErrUnknownParticipant, tag)
	}
	return ParticipantID(id), nil
}

// Message là thông điệp có thể mã hoá thành payload văn bản.
type Message interface {
	Encode() string
}

// RelayMessage mang một lệnh từ Commander tới Lieutenant, hoặc giữa các Lieutenant.
type RelayMessage struct {
	SenderTag string
	Order     Order
}

func NewRelayMessage(from ParticipantID, order Order) RelayMessage {
	return RelayMessage{SenderTag: SenderTag(from), Order: order}
}

func (m RelayMessage) Encode() string {
	return encode(m.SenderTag, keyOrder, m.Order)
}

// FromCommander cho biết thông điệp có tag của Commander hay không.
func (m RelayMessage) FromCommander() bool {
	return m.SenderTag == CommanderTag
}

func (m RelayMessage) String() string {
	return m.Encode()
}

// ConclusionMessage là quyết định cuối cùng một participant trung thành gửi về City.
type ConclusionMessage struct {
	SenderTag string
	Action    Order
}

func NewConclusionMessage(from ParticipantID, action Order) ConclusionMessage {
	return ConclusionMessage{SenderTag: SenderTag(from), Action: action}
}

func (m ConclusionMessage) Encode() string {
	return encode(m.SenderTag, keyAction, m.Action)
}

func (m ConclusionMessage) String() string {
	return m.Encode()
}

// DecodeRelay đọc "<tag>~order=<0|1>".
func DecodeRelay(payload string) (RelayMessage, error) {
	tag, order, err := decode(payload, keyOrder)
	if err != nil {
		return RelayMessage{}, err
	}
	return RelayMessage{SenderTag: tag, Order: order}, nil
}

// DecodeConclusion đọc "<tag>~action=<0|1>".
func DecodeConclusion(payload string) (ConclusionMessage, error) {
	tag, action, err := decode(payload, keyAction)
	if err != nil {
		return ConclusionMessage{}, err
	}
	return ConclusionMessage{SenderTag: tag, Action: action}, nil
}

func encode(tag, key string, o Order) string {
	return tag + fieldSeparator + key + keyValueSep + strconv.Itoa(int(o))
}

func decode(payload, wantKey string) (string, Order, error) {
	fields := strings.Split(payload, fieldSeparator)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("%w: expected 2 fields in %q", ErrMalformedMessage, payload)
	}
	tag := fields[0]
	if tag == "" {
		return "", 0, fmt.Errorf("%w: empty sender tag in %q", ErrMalformedMessage, payload)
	}
	key, value, ok := strings.Cut(fields[1], keyValueSep)
	if !ok {
		return "", 0, fmt.Errorf("%w: missing %q in %q", ErrMalformedMessage, keyValueSep, payload)
	}
	if key != wantKey {
		return "", 0, fmt.Errorf("%w: expected key %q, got %q", ErrMalformedMessage, wantKey, key)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return "", 0, fmt.Errorf("%w: order value %q: %v", ErrMalformedMessage, value, err)
	}
	o := Order(n)
	if !o.Valid() {
		return "", 0, fmt.Errorf("%w: %w: %d", ErrMalformedMessage, ErrInvalidOrder, n)
	}
	return tag, o, nil
}
