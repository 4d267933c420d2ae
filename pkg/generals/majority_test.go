package generals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMajority(t *testing.T) {
	cases := []struct {
		name   string
		values []Order
		want   Order
	}{
		{"attack wins two of three", []Order{Attack, Retreat, Attack}, Attack},
		{"retreat wins two of three", []Order{Retreat, Retreat, Attack}, Retreat},
		{"unanimous attack", []Order{Attack, Attack, Attack}, Attack},
		{"unanimous retreat", []Order{Retreat, Retreat, Retreat}, Retreat},
		{"first value alone does not decide", []Order{Attack, Retreat, Retreat}, Retreat},
		{"even split breaks to retreat", []Order{Attack, Retreat}, Retreat},
		{"empty is retreat", nil, Retreat},
		{"larger quorum", []Order{Attack, Attack, Retreat, Attack, Retreat}, Attack},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Majority(tc.values))
		})
	}
}

// Mọi tổ hợp 3 giá trị: kết quả là giá trị xuất hiện ít nhất 2 lần.
func TestMajorityOfThreeIsTheRepeatedValue(t *testing.T) {
	for _, a := range Orders {
		for _, b := range Orders {
			for _, c := range Orders {
				values := []Order{a, b, c}
				attack, retreat := Count(values)
				got := Majority(values)
				if got == Attack {
					assert.GreaterOrEqual(t, attack, 2, values)
				} else {
					assert.GreaterOrEqual(t, retreat, 2, values)
				}
			}
		}
	}
}
