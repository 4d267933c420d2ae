// Package generals cài đặt giao thức oral-message OM(1) của bài toán Byzantine Generals.
//
// Một lần chạy gồm n participant (mặc định n=4): participant 0 là Commander, các
// participant còn lại là Lieutenant. Commander gửi lệnh (ATTACK hoặc RETREAT) tới từng
// Lieutenant; mỗi Lieutenant chuyển tiếp giá trị nhận từ Commander tới n-2 Lieutenant
// còn lại đúng một lần, rồi lấy đa số trên n-1 giá trị đã thấy. Mọi participant trung
// thành báo quyết định về City; kẻ phản bội (traitor) không báo gì.
//
// Participant được tách thành hai lớp:
//   - các hàm thuần HandleInput / HandleMessage / Conclude trả về Step (thông điệp cần gửi
//     và quyết định nếu có), không đụng tới mạng
//   - các hàm BroadcastOrder / Participate / ReportDecision lái state machine qua một
//     transport.Transport
//
// Hành vi của traitor được tiêm vào qua Behavior, với nguồn ngẫu nhiên có thể seed, để
// test tái lập được.
package generals
