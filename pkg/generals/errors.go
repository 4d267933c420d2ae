package generals

import "errors"

var (
	// ErrMalformedMessage cho biết payload không đúng dạng "<tag>~<key>=<0|1>".
	ErrMalformedMessage = errors.New("malformed message")
	// ErrInvalidOrder cho biết giá trị không phải ATTACK/RETREAT.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrUnknownParticipant cho biết id hoặc địa chỉ không có trong address book.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrWrongRole cho biết thao tác không thuộc về vai trò của participant.
	ErrWrongRole = errors.New("operation not valid for this role")
	// ErrInvalidState cho biết thao tác được gọi sai thời điểm trong state machine.
	ErrInvalidState = errors.New("invalid participant state")
	// ErrReceiveTimeout cho biết một lần nhận vượt quá receive timeout đã cấu hình.
	ErrReceiveTimeout = errors.New("receive timed out")
	// ErrInvalidAddressBook cho biết address book không hợp lệ.
	ErrInvalidAddressBook = errors.New("invalid address book")
)
