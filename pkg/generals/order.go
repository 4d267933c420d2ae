package generals

import (
	"fmt"
	"math/rand"
	"strings"
)

// Order là lệnh nhị phân của giao thức. Giá trị số trùng với mã hoá trên dây.
type Order int

const (
	Retreat Order = 0
	Attack  Order = 1
)

// Orders liệt kê mọi giá trị hợp lệ theo thứ tự mã hoá.
var Orders = [...]Order{Retreat, Attack}

func (o Order) String() string {
	switch o {
	case Attack:
		return "ATTACK"
	case Retreat:
		return "RETREAT"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

func (o Order) Valid() bool {
	return o == Attack || o == Retreat
}

// ParseOrder đọc "ATTACK" hoặc "RETREAT" (không phân biệt hoa thường).
func ParseOrder(s string) (Order, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ATTACK":
		return Attack, nil
	case "RETREAT":
		return Retreat, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
}

// RandomOrder rút đều một Order từ rng.
func RandomOrder(rng *rand.Rand) Order {
	return Orders[rng.Intn(len(Orders))]
}
