// Package simulation dựng một lần chạy OM(1) hoàn chỉnh: mở transport, khởi chạy mỗi
// participant và City trên goroutine riêng, rồi gom kết quả.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meta-node-blockchain/om-generals/pkg/city"
	"github.com/meta-node-blockchain/om-generals/pkg/config"
	"github.com/meta-node-blockchain/om-generals/pkg/events"
	"github.com/meta-node-blockchain/om-generals/pkg/generals"
)

// Scenario mô tả một lần chạy.
type Scenario struct {
	Name string
	// Traitors[i] cho biết participant i có phản bội không. Phần tử 0 là Commander.
	Traitors []bool
	Order    generals.Order
	// Behaviors ghi đè hành vi của từng traitor (ví dụ ScriptedLiar). Traitor không có
	// trong map dùng RandomLiar seed từ Seed.
	Behaviors map[generals.ParticipantID]generals.Behavior

	Transport string // config.TransportLocal hoặc config.TransportUDP
	Host      string
	BasePort  int

	ReceiveTimeout time.Duration
	SendInterval   time.Duration
	// Latency và Jitter chỉ áp dụng cho mạng nội bộ.
	Latency time.Duration
	Jitter  time.Duration

	// Seed 0 nghĩa là lấy theo thời gian; seed thực sự được ghi trong Result.
	Seed int64
	Sink events.Sink
}

// Result là kết quả một lần chạy.
type Result struct {
	RunID    string
	Seed     int64
	Verdict  city.Verdict
	Tally    city.Tally
	Traitors []bool
	// Decisions chứa quyết định của mọi participant đã quyết định, kể cả traitor.
	Decisions map[generals.ParticipantID]generals.Order
	Sent      map[generals.ParticipantID][]generals.RelayMessage
	// Errors chứa lỗi không chí mạng của từng participant (hết thời gian chờ).
	Errors   map[generals.ParticipantID]error
	Duration time.Duration
}

// LoyalCount là số participant trung thành, cũng là số báo cáo City chờ.
func LoyalCount(traitors []bool) int {
	n := 0
	for _, t := range traitors {
		if !t {
			n++
		}
	}
	return n
}

// LoyalDecisions trả về quyết định của các participant trung thành.
func (r *Result) LoyalDecisions() map[generals.ParticipantID]generals.Order {
	out := make(map[generals.ParticipantID]generals.Order)
	for id, d := range r.Decisions {
		if !r.Traitors[id] {
			out[id] = d
		}
	}
	return out
}

// Agreement cho biết mọi Lieutenant trung thành có cùng quyết định không, và giá trị đó.
func (r *Result) Agreement() (generals.Order, bool) {
	var (
		common generals.Order
		seen   bool
	)
	for id, d := range r.LoyalDecisions() {
		if id == generals.CommanderID {
			continue
		}
		if seen && d != common {
			return 0, false
		}
		common, seen = d, true
	}
	return common, seen
}

func (sc Scenario) validate() error {
	if n := len(sc.Traitors); n < config.MinGenerals || n > config.MaxGenerals {
		return fmt.Errorf("%w: need between %d and %d generals, got %d", config.ErrInvalidConfig, config.MinGenerals, config.MaxGenerals, n)
	}
	if !sc.Order.Valid() {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, generals.ErrInvalidOrder)
	}
	if sc.ReceiveTimeout < 0 || sc.SendInterval < 0 || sc.Latency < 0 || sc.Jitter < 0 {
		return fmt.Errorf("%w: negative duration", config.ErrInvalidConfig)
	}
	for id := range sc.Behaviors {
		if int(id) < 0 || int(id) >= len(sc.Traitors) {
			return fmt.Errorf("%w: behavior for unknown participant %d", config.ErrInvalidConfig, id)
		}
	}
	return nil
}

// Run chạy scenario tới khi City đưa ra kết luận. Lỗi trả về là lỗi chí mạng
// (transport, payload hỏng, ctx bị huỷ); hết thời gian chờ được ghi trong Result.Errors.
func Run(ctx context.Context, sc Scenario) (*Result, error) {
	if err := sc.validate(); err != nil {
		return nil, err
	}
	if sc.Seed == 0 {
		sc.Seed = time.Now().UnixNano()
	}
	if sc.Host == "" {
		sc.Host = "127.0.0.1"
	}

	res := &Result{
		RunID:     uuid.New().String(),
		Seed:      sc.Seed,
		Traitors:  append([]bool(nil), sc.Traitors...),
		Decisions: make(map[generals.ParticipantID]generals.Order),
		Sent:      make(map[generals.ParticipantID][]generals.RelayMessage),
		Errors:    make(map[generals.ParticipantID]error),
	}
	sink := events.Stamped(events.Multi(sc.Sink), "run", res.RunID)

	var (
		ep  *endpoints
		err error
	)
	switch sc.Transport {
	case "", config.TransportLocal:
		ep, err = openLocal(sc)
	case config.TransportUDP:
		ep, err = openUDP(sc)
	default:
		err = fmt.Errorf("%w: unknown transport %q", config.ErrInvalidConfig, sc.Transport)
	}
	if err != nil {
		return nil, err
	}
	defer ep.close()

	n := len(sc.Traitors)
	participants := make([]*generals.Participant, n)
	for i := 0; i < n; i++ {
		id := generals.ParticipantID(i)
		p, err := generals.New(generals.Config{
			ID:             id,
			Traitor:        sc.Traitors[i],
			Book:           ep.book,
			Behavior:       sc.Behaviors[id],
			Rand:           rand.New(rand.NewSource(sc.Seed + int64(i) + 1)),
			Transport:      ep.participants[i],
			Sink:           sink,
			ReceiveTimeout: sc.ReceiveTimeout,
		})
		if err != nil {
			return nil, err
		}
		participants[i] = p
	}
	observer, err := city.New(city.Config{Transport: ep.city, Sink: sink, ReceiveTimeout: sc.ReceiveTimeout})
	if err != nil {
		return nil, err
	}

	sink.Emit(events.New("main", events.KindStarted, "simulation started",
		"name", sc.Name, "generals", n, "loyal", LoyalCount(sc.Traitors), "order", sc.Order, "seed", sc.Seed))
	start := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	// City chạy trước để không mất báo cáo nào trên UDP.
	g.Go(func() error {
		v, tally, err := observer.CollectAndJudge(gctx, LoyalCount(sc.Traitors))
		if err != nil {
			return err
		}
		mu.Lock()
		res.Verdict, res.Tally = v, tally
		mu.Unlock()
		return nil
	})

	for _, p := range participants {
		g.Go(func() error {
			d, err := p.Run(gctx, sc.Order)
			mu.Lock()
			defer mu.Unlock()
			if sent := p.Sent(); len(sent) > 0 {
				res.Sent[p.ID()] = sent
			}
			if err != nil {
				if errors.Is(err, generals.ErrReceiveTimeout) {
					res.Errors[p.ID()] = err
					return nil
				}
				return err
			}
			res.Decisions[p.ID()] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}
	res.Duration = time.Since(start)
	sink.Emit(events.New("main", events.KindCompleted, "simulation completed",
		"verdict", res.Verdict, "duration", res.Duration))
	return res, nil
}

// ScenarioFromConfig dựng Scenario từ RunConfig đã được Validate.
// base_port = 0 với UDP được đổi thành cổng ngẫu nhiên trong [10000, 11000).
func ScenarioFromConfig(c *config.RunConfig) (Scenario, error) {
	if err := c.Validate(); err != nil {
		return Scenario{}, err
	}
	traitors, _ := config.ParseGenerals(c.Generals)
	order, _ := generals.ParseOrder(c.Order)

	sc := Scenario{
		Name:           c.Generals + " " + order.String(),
		Traitors:       traitors,
		Order:          order,
		Transport:      c.Transport,
		Host:           c.Host,
		BasePort:       c.BasePort,
		ReceiveTimeout: c.ReceiveTimeout.Std(),
		SendInterval:   c.SendInterval.Std(),
		Seed:           c.Seed,
	}
	if sc.Transport == config.TransportUDP && sc.BasePort == 0 {
		port, err := RandomBasePort(rand.New(rand.NewSource(time.Now().UnixNano())), config.PortRangeStart, config.PortRangeEnd)
		if err != nil {
			return Scenario{}, err
		}
		sc.BasePort = port
	}
	return sc, nil
}
