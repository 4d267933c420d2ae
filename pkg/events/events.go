// Package events định nghĩa các sự kiện có cấu trúc mà giao thức phát ra.
// Lõi giao thức không giữ logger toàn cục; người gọi truyền vào một Sink.
package events

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Kind phân loại một sự kiện.
type Kind string

const (
	KindStarted   Kind = "started"
	KindSent      Kind = "sent"
	KindReceived  Kind = "received"
	KindRelayed   Kind = "relayed"
	KindDecided   Kind = "decided"
	KindReported  Kind = "reported"
	KindWithheld  Kind = "withheld"
	KindFault     Kind = "fault"
	KindTimeout   Kind = "timeout"
	KindTallied   Kind = "tallied"
	KindVerdict   Kind = "verdict"
	KindCompleted Kind = "completed"
)

// Event là một bản ghi có cấu trúc về một bước của giao thức.
type Event struct {
	Time   time.Time
	Source string // "supreme_general", "general_2", "city"
	Kind   Kind
	Msg    string
	Fields map[string]interface{}
}

// New dựng một Event với các cặp key/value xen kẽ trong kv.
func New(source string, kind Kind, msg string, kv ...interface{}) Event {
	e := Event{
		Time:   time.Now(),
		Source: source,
		Kind:   kind,
		Msg:    msg,
		Fields: make(map[string]interface{}, len(kv)/2),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return e
}

// With trả về một bản sao của sự kiện có thêm trường key=value.
func (e Event) With(key string, value interface{}) Event {
	fields := make(map[string]interface{}, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	e.Fields = fields
	return e
}

// String in sự kiện theo dạng "source kind: msg k=v ..." với các trường đã sắp xếp.
func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Source, e.Kind)
	if e.Msg != "" {
		fmt.Fprintf(&b, ": %s", e.Msg)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

// Sink nhận các sự kiện. Implementation phải an toàn khi gọi đồng thời
// vì nhiều participant có thể chia sẻ cùng một Sink.
type Sink interface {
	Emit(Event)
}

// SinkFunc cho phép dùng một hàm như một Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Nop bỏ qua mọi sự kiện.
var Nop Sink = SinkFunc(func(Event) {})

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi phân phát mỗi sự kiện tới tất cả các sink (bỏ qua sink nil).
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Stamped thêm một trường cố định (ví dụ run id) vào mọi sự kiện trước khi chuyển tiếp.
func Stamped(next Sink, key string, value interface{}) Sink {
	return SinkFunc(func(e Event) {
		next.Emit(e.With(key, value))
	})
}

// Recorder lưu lại các sự kiện trong bộ nhớ, chủ yếu dùng cho test.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events trả về bản sao các sự kiện đã ghi theo thứ tự nhận.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter trả về các sự kiện khớp source và kind. Source rỗng khớp mọi nguồn.
func (r *Recorder) Filter(source string, kind Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if (source == "" || e.Source == source) && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
