package generals

// Count đếm số ATTACK và RETREAT trong values.
func Count(values []Order) (attack, retreat int) {
	for _, v := range values {
		if v == Attack {
			attack++
		} else {
			retreat++
		}
	}
	return attack, retreat
}

// Majority trả về giá trị xuất hiện nhiều nhất. Khi hoà (chỉ xảy ra với số phần tử
// chẵn, kể cả rỗng) kết quả là RETREAT.
func Majority(values []Order) Order {
	attack, retreat := Count(values)
	if attack > retreat {
		return Attack
	}
	return Retreat
}
