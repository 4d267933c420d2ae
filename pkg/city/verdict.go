package city

import (
	"fmt"

	"github.com/meta-node-blockchain/om-generals/pkg/generals"
)

// Verdict là kết luận cuối cùng của City về cả hệ thống.
type Verdict string

const (
	VerdictAttack              Verdict = "ATTACK"
	VerdictRetreat             Verdict = "RETREAT"
	VerdictFailed              Verdict = "FAILED"
	VerdictLessThanTwoGenerals Verdict = "ERROR_LESS_THAN_TWO_GENERALS"
)

// minReports là số báo cáo tối thiểu để City đưa ra kết luận.
const minReports = 2

func (v Verdict) String() string { return string(v) }

// Tally đếm các ConclusionMessage City đã nhận.
type Tally struct {
	Attack   int
	Retreat  int
	Received int
	Expected int
	// TimedOut bật khi City ngừng chờ trước khi nhận đủ Expected báo cáo.
	TimedOut bool
	Senders  []string
}

// Add ghi nhận một báo cáo. Thứ tự Add không ảnh hưởng kết quả.
func (t *Tally) Add(msg generals.ConclusionMessage) {
	t.Received++
	t.Senders = append(t.Senders, msg.SenderTag)
	if msg.Action == generals.Attack {
		t.Attack++
	} else {
		t.Retreat++
	}
}

func (t Tally) String() string {
	return fmt.Sprintf("attack=%d retreat=%d received=%d/%d", t.Attack, t.Retreat, t.Received, t.Expected)
}

// Judge áp dụng luật kết luận theo thứ tự:
//
//	received < 2               -> ERROR_LESS_THAN_TWO_GENERALS
//	attack > 0 && retreat > 0  -> FAILED
//	attack > retreat           -> ATTACK
//	còn lại                    -> RETREAT
func Judge(t Tally) Verdict {
	switch {
	case t.Received < minReports:
		return VerdictLessThanTwoGenerals
	case t.Attack > 0 && t.Retreat > 0:
		return VerdictFailed
	case t.Attack > t.Retreat:
		return VerdictAttack
	default:
		return VerdictRetreat
	}
}

// ParseVerdict đọc tên Verdict, dùng khi so sánh kết quả kịch bản.
func ParseVerdict(s string) (Verdict, error) {
	switch v := Verdict(s); v {
	case VerdictAttack, VerdictRetreat, VerdictFailed, VerdictLessThanTwoGenerals:
		return v, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// FromOrder chuyển một Order đồng thuận thành Verdict tương ứng.
func FromOrder(o generals.Order) Verdict {
	if o == generals.Attack {
		return VerdictAttack
	}
	return VerdictRetreat
}
