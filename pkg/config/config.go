package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/meta-node-blockchain/om-generals/pkg/generals"
	"github.com/meta-node-blockchain/om-generals/pkg/logger"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	TransportLocal = "local"
	TransportUDP   = "udp"

	MinGenerals = 4
	MaxGenerals = 16

	// Khi BasePort = 0, cổng bắt đầu được chọn ngẫu nhiên trong [PortRangeStart, PortRangeEnd).
	PortRangeStart = 10000
	PortRangeEnd   = 11000
)

// Duration cho phép ghi thời gian trong JSON dạng "250ms" hoặc số nano giây.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// RunConfig là cấu hình cho một lần chạy mô phỏng.
type RunConfig struct {
	Generals       string   `json:"generals"`
	Order          string   `json:"order"`
	Transport      string   `json:"transport"`
	Host           string   `json:"host"`
	BasePort       int      `json:"base_port"`
	ReceiveTimeout Duration `json:"receive_timeout"`
	SendInterval   Duration `json:"send_interval"`
	Seed           int64    `json:"seed"`
	LogDir         string   `json:"log_dir"`
	LogLevel       string   `json:"log_level"`
	CleanLogs      bool     `json:"clean_logs"`
}

// DefaultConfig trả về cấu hình mặc định: l,t,l,l với lệnh RETREAT trên mạng nội bộ.
func DefaultConfig() *RunConfig {
	return &RunConfig{
		Generals:  "l,t,l,l",
		Order:     "RETREAT",
		Transport: TransportLocal,
		Host:      "127.0.0.1",
		LogDir:    "logs",
		LogLevel:  "info",
	}
}

// LoadConfigFromFile đọc cấu hình JSON; các trường thiếu giữ giá trị mặc định.
func LoadConfigFromFile(filename string) (*RunConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("could not unmarshal json: %w", err)
	}
	return config, nil
}

// ParseGenerals đọc chuỗi dạng "l,t,l,l": l là trung thành, t là phản bội.
// Phần tử đầu tiên là Commander.
func ParseGenerals(s string) ([]bool, error) {
	parts := strings.Split(s, ",")
	traitors := make([]bool, 0, len(parts))
	for i, p := range parts {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "l":
			traitors = append(traitors, false)
		case "t":
			traitors = append(traitors, true)
		default:
			return nil, fmt.Errorf("%w: general %d is %q, want l or t", ErrInvalidConfig, i, p)
		}
	}
	return traitors, nil
}

// FormatGenerals là hàm ngược của ParseGenerals.
func FormatGenerals(traitors []bool) string {
	parts := make([]string, len(traitors))
	for i, t := range traitors {
		if t {
			parts[i] = "t"
		} else {
			parts[i] = "l"
		}
	}
	return strings.Join(parts, ",")
}

// Validate kiểm tra toàn bộ cấu hình và trả về lỗi đầu tiên gặp phải.
func (c *RunConfig) Validate() error {
	traitors, err := ParseGenerals(c.Generals)
	if err != nil {
		return err
	}
	if n := len(traitors); n < MinGenerals || n > MaxGenerals {
		return fmt.Errorf("%w: need between %d and %d generals, got %d", ErrInvalidConfig, MinGenerals, MaxGenerals, n)
	}
	if _, err := generals.ParseOrder(c.Order); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Transport {
	case TransportLocal, TransportUDP:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	if c.Transport == TransportUDP {
		if c.Host == "" {
			return fmt.Errorf("%w: udp transport needs a host", ErrInvalidConfig)
		}
		// n participant + City dùng các cổng liên tiếp.
		if c.BasePort < 0 || c.BasePort+len(traitors) > 65535 {
			return fmt.Errorf("%w: base_port %d out of range", ErrInvalidConfig, c.BasePort)
		}
	}
	if c.ReceiveTimeout < 0 {
		return fmt.Errorf("%w: negative receive_timeout", ErrInvalidConfig)
	}
	if c.SendInterval < 0 {
		return fmt.Errorf("%w: negative send_interval", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
