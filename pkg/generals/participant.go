package generals

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/meta-node-blockchain/om-generals/pkg/events"
	"github.com/meta-node-blockchain/om-generals/pkg/transport"
)

// Config chứa mọi thứ để dựng một Participant.
type Config struct {
	ID      ParticipantID
	Traitor bool
	Book    *AddressBook

	// Behavior của traitor. Nil thì dùng RandomLiar với Rand (hoặc seed theo thời gian).
	// Participant trung thành luôn dùng Loyal, bỏ qua trường này.
	Behavior Behavior
	Rand     *rand.Rand

	Transport transport.Transport
	Sink      events.Sink

	// ReceiveTimeout > 0 giới hạn mỗi lần nhận; 0 nghĩa là chờ vô hạn.
	ReceiveTimeout time.Duration
}

// Participant là một general với vai trò cố định. Không an toàn khi dùng từ nhiều
// goroutine: mỗi participant thuộc về đúng một goroutine.
type Participant struct {
	id       ParticipantID
	role     Role
	traitor  bool
	behavior Behavior
	book     *AddressBook

	tr             transport.Transport
	sink           events.Sink
	receiveTimeout time.Duration

	state    State
	observed []Order
	relayed  bool
	decision *Order
	sent     []RelayMessage
	faults   []Fault
}

func New(cfg Config) (*Participant, error) {
	if cfg.Book == nil {
		return nil, fmt.Errorf("%w: nil address book", ErrInvalidAddressBook)
	}
	if _, err := cfg.Book.Address(cfg.ID); err != nil {
		return nil, err
	}

	behavior := Loyal()
	if cfg.Traitor {
		switch {
		case cfg.Behavior != nil:
			behavior = cfg.Behavior
		case cfg.Rand != nil:
			behavior = NewRandomLiar(cfg.Rand)
		default:
			behavior = NewSeededLiar(time.Now().UnixNano() + int64(cfg.ID))
		}
	}

	sink := cfg.Sink
	if sink == nil {
		sink = events.Nop
	}

	p := &Participant{
		id:             cfg.ID,
		role:           RoleOf(cfg.ID),
		traitor:        cfg.Traitor,
		behavior:       behavior,
		book:           cfg.Book,
		tr:             cfg.Transport,
		sink:           sink,
		receiveTimeout: cfg.ReceiveTimeout,
		observed:       make([]Order, 0, cfg.Book.Size()-1),
	}
	if p.role == Commander {
		p.state = StateAwaitingOrder
	} else {
		p.state = StateAwaitingMessages
	}
	return p, nil
}

func (p *Participant) ID() ParticipantID { return p.id }
func (p *Participant) Role() Role        { return p.role }
func (p *Participant) Traitor() bool     { return p.traitor }
func (p *Participant) State() State      { return p.state }
func (p *Participant) Tag() string       { return SenderTag(p.id) }

// Observed trả về bản sao các giá trị Lieutenant đã nhận theo thứ tự đến.
func (p *Participant) Observed() []Order {
	out := make([]Order, len(p.observed))
	copy(out, p.observed)
	return out
}

// Decision trả về quyết định nếu đã có.
func (p *Participant) Decision() (Order, bool) {
	if p.decision == nil {
		return 0, false
	}
	return *p.decision, true
}

// Sent trả về các RelayMessage participant đã phát ra (broadcast hoặc relay).
func (p *Participant) Sent() []RelayMessage {
	out := make([]RelayMessage, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *Participant) Faults() []Fault {
	out := make([]Fault, len(p.faults))
	copy(out, p.faults)
	return out
}

// expectedMessages là số giá trị một Lieutenant cần: 1 từ Commander + n-2 relay.
func (p *Participant) expectedMessages() int {
	return p.book.Size() - 1
}

// HandleInput là bước broadcast của Commander: một RelayMessage cho mỗi Lieutenant,
// mỗi giá trị đi qua Behavior một cách độc lập.
func (p *Participant) HandleInput(trueOrder Order) (Step, error) {
	if p.role != Commander {
		return Step{}, fmt.Errorf("%w: %s cannot broadcast an order", ErrWrongRole, p.role)
	}
	if p.state != StateAwaitingOrder {
		return Step{}, fmt.Errorf("%w: broadcast in state %s", ErrInvalidState, p.state)
	}
	if !trueOrder.Valid() {
		return Step{}, fmt.Errorf("%w: %d", ErrInvalidOrder, int(trueOrder))
	}

	step := Step{}
	for _, lt := range p.book.Lieutenants() {
		addr, err := p.book.Address(lt)
		if err != nil {
			return Step{}, err
		}
		msg := NewRelayMessage(p.id, p.behavior.Emit(trueOrder))
		p.sent = append(p.sent, msg)
		step.Messages = append(step.Messages, Outbound{To: addr, Recipient: lt, Message: msg})
	}

	// Quyết định của Commander chính là lệnh của nó, không cần bỏ phiếu.
	o := trueOrder
	p.decision = &o
	p.state = StateDeciding
	step.Decision = &o
	return step, nil
}

// HandleMessage xử lý một RelayMessage tới Lieutenant. Chỉ giá trị đầu tiên từ
// Commander được relay, mỗi peer đúng một lần; thông điệp từ peer không bao giờ được
// relay. Khi đủ n-1 giá trị, Lieutenant quyết định theo đa số.
func (p *Participant) HandleMessage(from transport.Address, msg RelayMessage) (Step, error) {
	if p.role != Lieutenant {
		return Step{}, fmt.Errorf("%w: %s does not receive relay messages", ErrWrongRole, p.role)
	}
	if p.state != StateAwaitingMessages {
		return Step{}, fmt.Errorf("%w: message in state %s", ErrInvalidState, p.state)
	}
	if !msg.Order.Valid() {
		return Step{}, fmt.Errorf("%w: %d", ErrInvalidOrder, int(msg.Order))
	}

	step := Step{}
	p.observed = append(p.observed, msg.Order)
	step.Faults = p.checkSender(from, msg)

	if msg.FromCommander() {
		if p.relayed {
			step.Faults = append(step.Faults, Fault{SenderTag: msg.SenderTag, From: from, Kind: FaultDuplicateCommanderOrder})
		} else {
			p.relayed = true
			for _, peer := range p.book.Peers(p.id) {
				addr, err := p.book.Address(peer)
				if err != nil {
					return Step{}, err
				}
				out := NewRelayMessage(p.id, p.behavior.Emit(msg.Order))
				p.sent = append(p.sent, out)
				step.Messages = append(step.Messages, Outbound{To: addr, Recipient: peer, Message: out})
			}
		}
	}
	p.faults = append(p.faults, step.Faults...)

	if len(p.observed) == p.expectedMessages() {
		d := Majority(p.observed)
		p.decision = &d
		p.state = StateDeciding
		step.Decision = &d
	}
	return step, nil
}

// checkSender đối chiếu tag với địa chỉ transport. Oral message không có chữ ký nên
// đây chỉ là thông tin chẩn đoán, không bao giờ loại thông điệp.
func (p *Participant) checkSender(from transport.Address, msg RelayMessage) []Fault {
	claimed, err := ParseSenderTag(msg.SenderTag)
	if err != nil {
		return []Fault{{SenderTag: msg.SenderTag, From: from, Kind: FaultUnknownSender}}
	}
	if _, err := p.book.Address(claimed); err != nil {
		return []Fault{{SenderTag: msg.SenderTag, From: from, Kind: FaultUnknownSender}}
	}
	actual, err := p.book.Participant(from)
	if err != nil || actual != claimed {
		return []Fault{{SenderTag: msg.SenderTag, From: from, Kind: FaultSenderMismatch}}
	}
	return nil
}

// Conclude tạo báo cáo về City. Traitor không gửi gì: Step rỗng.
func (p *Participant) Conclude() (Step, error) {
	if p.state != StateDeciding || p.decision == nil {
		return Step{}, fmt.Errorf("%w: conclude in state %s", ErrInvalidState, p.state)
	}
	p.state = StateReported
	if p.traitor {
		return Step{}, nil
	}
	msg := NewConclusionMessage(p.id, *p.decision)
	return Step{Messages: []Outbound{{To: p.book.City(), Recipient: CityID, Message: msg}}}, nil
}

// --- Driver ---

// BroadcastOrder gửi lệnh của Commander tới mọi Lieutenant và trả về các thông điệp đã gửi.
// Không chờ phản hồi.
func (p *Participant) BroadcastOrder(ctx context.Context, trueOrder Order) ([]RelayMessage, error) {
	p.emit(events.KindStarted, "broadcasting order", "order", trueOrder, "traitor", p.traitor)
	step, err := p.HandleInput(trueOrder)
	if err != nil {
		return nil, err
	}
	if err := p.send(ctx, step); err != nil {
		return nil, err
	}
	sent := make([]RelayMessage, 0, len(step.Messages))
	for _, out := range step.Messages {
		sent = append(sent, out.Message.(RelayMessage))
	}
	return sent, nil
}

// Participate chạy vòng lặp chặn của Lieutenant: nhận n-1 thông điệp, relay giá trị
// của Commander, rồi quyết định theo đa số.
func (p *Participant) Participate(ctx context.Context) (Order, error) {
	if p.role != Lieutenant {
		return 0, fmt.Errorf("%w: %s does not participate in relaying", ErrWrongRole, p.role)
	}
	p.emit(events.KindStarted, "listening for orders", "traitor", p.traitor, "expect", p.expectedMessages())

	for p.state == StateAwaitingMessages {
		dg, err := p.receive(ctx)
		if err != nil {
			return 0, err
		}
		msg, err := DecodeRelay(dg.Payload)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p.Tag(), err)
		}
		p.emit(events.KindReceived, "got order", "from", msg.SenderTag, "order", msg.Order, "observed", len(p.observed)+1)

		step, err := p.HandleMessage(dg.From, msg)
		if err != nil {
			return 0, err
		}
		for _, f := range step.Faults {
			p.emit(events.KindFault, string(f.Kind), "from", f.SenderTag, "addr", f.From)
		}
		if err := p.sendAs(ctx, step, events.KindRelayed); err != nil {
			return 0, err
		}
	}

	d, _ := p.Decision()
	p.emit(events.KindDecided, "concluded action", "action", d, "observed", fmt.Sprint(p.observed))
	return d, nil
}

// ReportDecision gửi quyết định về City. Traitor trả về nil và không gửi gì.
func (p *Participant) ReportDecision(ctx context.Context) (*ConclusionMessage, error) {
	step, err := p.Conclude()
	if err != nil {
		return nil, err
	}
	if len(step.Messages) == 0 {
		p.emit(events.KindWithheld, "traitor withholds its decision")
		return nil, nil
	}
	if err := p.send(ctx, step); err != nil {
		return nil, err
	}
	msg := step.Messages[0].Message.(ConclusionMessage)
	p.emit(events.KindReported, "sent decision to city", "action", msg.Action)
	return &msg, nil
}

// Run chạy toàn bộ vai trò của participant: Commander broadcast rồi báo cáo,
// Lieutenant tham gia rồi báo cáo. trueOrder chỉ có nghĩa với Commander.
func (p *Participant) Run(ctx context.Context, trueOrder Order) (Order, error) {
	switch p.role {
	case Commander:
		if _, err := p.BroadcastOrder(ctx, trueOrder); err != nil {
			return 0, err
		}
	case Lieutenant:
		if _, err := p.Participate(ctx); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("%w: %s", ErrWrongRole, p.role)
	}
	if _, err := p.ReportDecision(ctx); err != nil {
		return 0, err
	}
	d, _ := p.Decision()
	return d, nil
}

func (p *Participant) send(ctx context.Context, step Step) error {
	return p.sendAs(ctx, step, events.KindSent)
}

// sendAs gửi mọi thông điệp của step và phát một sự kiện kind cho mỗi thông điệp.
func (p *Participant) sendAs(ctx context.Context, step Step, kind events.Kind) error {
	if p.tr == nil {
		return fmt.Errorf("%s: no transport configured", p.Tag())
	}
	for _, out := range step.Messages {
		payload := out.Message.Encode()
		if err := p.tr.Send(ctx, payload, out.To); err != nil {
			return fmt.Errorf("%s: send to %d: %w", p.Tag(), out.To, err)
		}
		p.emit(kind, payload, "to", out.To)
	}
	return nil
}

func (p *Participant) receive(ctx context.Context) (transport.Datagram, error) {
	if p.tr == nil {
		return transport.Datagram{}, fmt.Errorf("%s: no transport configured", p.Tag())
	}
	rctx := ctx
	if p.receiveTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, p.receiveTimeout)
		defer cancel()
	}
	dg, err := p.tr.Receive(rctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			p.emit(events.KindTimeout, "no message before timeout", "observed", len(p.observed), "timeout", p.receiveTimeout)
			return transport.Datagram{}, fmt.Errorf("%s: %w after %s", p.Tag(), ErrReceiveTimeout, p.receiveTimeout)
		}
		return transport.Datagram{}, fmt.Errorf("%s: receive: %w", p.Tag(), err)
	}
	return dg, nil
}

func (p *Participant) emit(kind events.Kind, msg string, kv ...interface{}) {
	p.sink.Emit(events.New(p.Tag(), kind, msg, kv...))
}
