package generals

import (
	"math/rand"
	"sync"
)

// Behavior quyết định giá trị thực sự được gửi đi tại mỗi điểm broadcast/relay.
// Không được dùng khi báo quyết định về City: traitor đơn giản là không gửi.
type Behavior interface {
	Emit(trueValue Order) Order
}

type loyal struct{}

func (loyal) Emit(v Order) Order { return v }

// Loyal trả về hành vi trung thực: luôn gửi đúng giá trị đang giữ.
func Loyal() Behavior { return loyal{} }

// RandomLiar rút ngẫu nhiên một lệnh cho mỗi lần gửi, độc lập với giá trị thật và với
// các lần gửi khác. Traitor không cần nhất quán với chính nó.
type RandomLiar struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomLiar(rng *rand.Rand) *RandomLiar {
	return &RandomLiar{rng: rng}
}

// NewSeededLiar tạo RandomLiar với nguồn ngẫu nhiên riêng từ seed.
func NewSeededLiar(seed int64) *RandomLiar {
	return NewRandomLiar(rand.New(rand.NewSource(seed)))
}

func (l *RandomLiar) Emit(Order) Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return RandomOrder(l.rng)
}

// ScriptedLiar gửi lần lượt các giá trị cho trước, quay vòng khi hết.
// Dùng để dựng lại các kịch bản cố định.
type ScriptedLiar struct {
	mu     sync.Mutex
	script []Order
	next   int
}

func NewScriptedLiar(script ...Order) *ScriptedLiar {
	s := make([]Order, len(script))
	copy(s, script)
	return &ScriptedLiar{script: s}
}

func (l *ScriptedLiar) Emit(v Order) Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.script) == 0 {
		return v
	}
	o := l.script[l.next%len(l.script)]
	l.next++
	return o
}
