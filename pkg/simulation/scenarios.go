package simulation

import (
	"github.com/meta-node-blockchain/om-generals/pkg/city"
	"github.com/meta-node-blockchain/om-generals/pkg/generals"
)

// Case là một kịch bản cố định kèm kết luận mong đợi.
type Case struct {
	Scenario Scenario
	Expected city.Verdict
}

// Canonical trả về các kịch bản chuẩn. Traitor dùng ScriptedLiar nên kết quả
// không phụ thuộc seed. Mỗi lần gọi tạo Behavior mới.
func Canonical() []Case {
	liar := generals.NewScriptedLiar
	A, R := generals.Attack, generals.Retreat
	type behaviors = map[generals.ParticipantID]generals.Behavior

	return []Case{
		{
			Scenario: Scenario{Name: "tất cả trung thành", Traitors: []bool{false, false, false, false}, Order: A},
			Expected: city.VerdictAttack,
		},
		{
			Scenario: Scenario{
				Name:      "một lieutenant phản bội, lệnh RETREAT",
				Traitors:  []bool{false, true, false, false},
				Order:     R,
				Behaviors: behaviors{1: liar(A, A)},
			},
			Expected: city.VerdictRetreat,
		},
		{
			Scenario: Scenario{
				Name:      "commander phản bội, lệnh ATTACK",
				Traitors:  []bool{true, false, false, false},
				Order:     A,
				Behaviors: behaviors{0: liar(A, A, R)},
			},
			Expected: city.VerdictAttack,
		},
		{
			Scenario: Scenario{
				Name:      "chỉ một general trung thành",
				Traitors:  []bool{true, true, true, false},
				Order:     R,
				Behaviors: behaviors{0: liar(A, R, R), 1: liar(A, R), 2: liar(R, R)},
			},
			Expected: city.VerdictLessThanTwoGenerals,
		},
		{
			Scenario: Scenario{
				Name:      "hai traitor, lệnh ATTACK",
				Traitors:  []bool{true, false, true, false},
				Order:     A,
				Behaviors: behaviors{0: liar(A, A, R), 2: liar(R, A)},
			},
			Expected: city.VerdictFailed,
		},
	}
}
