// Package city là bên quan sát: thu các ConclusionMessage từ các general trung thành
// và đưa ra kết luận chung.
package city

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meta-node-blockchain/om-generals/pkg/events"
	"github.com/meta-node-blockchain/om-generals/pkg/generals"
	"github.com/meta-node-blockchain/om-generals/pkg/transport"
)

// Source là tên nguồn của mọi sự kiện City phát ra.
const Source = "city"

type Config struct {
	Transport transport.Transport
	Sink      events.Sink
	// ReceiveTimeout > 0: hết hạn thì City ngừng chờ và kết luận trên những gì đã có.
	ReceiveTimeout time.Duration
}

type City struct {
	tr             transport.Transport
	sink           events.Sink
	receiveTimeout time.Duration
}

func New(cfg Config) (*City, error) {
	if cfg.Transport == nil {
		return nil, errors.New("city: nil transport")
	}
	sink := cfg.Sink
	if sink == nil {
		sink = events.Nop
	}
	return &City{tr: cfg.Transport, sink: sink, receiveTimeout: cfg.ReceiveTimeout}, nil
}

func (c *City) Addr() transport.Address {
	return c.tr.Addr()
}

// CollectAndJudge nhận đúng expected báo cáo, đếm và kết luận.
// Payload hỏng là lỗi chí mạng; hết thời gian chờ thì không phải lỗi.
func (c *City) CollectAndJudge(ctx context.Context, expected int) (Verdict, Tally, error) {
	tally := Tally{Expected: expected}
	c.emit(events.KindStarted, "listening for conclusions", "expected", expected)

	for tally.Received < expected {
		dg, err := c.receive(ctx)
		if err != nil {
			if errors.Is(err, generals.ErrReceiveTimeout) {
				tally.TimedOut = true
				break
			}
			return "", tally, err
		}
		msg, err := generals.DecodeConclusion(dg.Payload)
		if err != nil {
			return "", tally, fmt.Errorf("%s: %w", Source, err)
		}
		tally.Add(msg)
		c.emit(events.KindReceived, fmt.Sprintf("%s %s from us!", msg.SenderTag, msg.Action), "from", msg.SenderTag, "action", msg.Action)
	}

	c.emit(events.KindTallied, "concluding what happened", "attack", tally.Attack, "retreat", tally.Retreat, "received", tally.Received)
	v := Judge(tally)
	c.emit(events.KindVerdict, "general consensus", "verdict", v)
	return v, tally, nil
}

func (c *City) receive(ctx context.Context) (transport.Datagram, error) {
	rctx := ctx
	if c.receiveTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, c.receiveTimeout)
		defer cancel()
	}
	dg, err := c.tr.Receive(rctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			c.emit(events.KindTimeout, "stopped waiting for conclusions", "timeout", c.receiveTimeout)
			return transport.Datagram{}, fmt.Errorf("%s: %w after %s", Source, generals.ErrReceiveTimeout, c.receiveTimeout)
		}
		return transport.Datagram{}, fmt.Errorf("%s: receive: %w", Source, err)
	}
	return dg, nil
}

func (c *City) emit(kind events.Kind, msg string, kv ...interface{}) {
	c.sink.Emit(events.New(Source, kind, msg, kv...))
}
