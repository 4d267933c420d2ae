package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// --- Constants for log levels ---
const (
	FLAG_TRACE = 5
	FLAG_DEBUG = 4
	FLAG_INFO  = 3
	FLAG_WARN  = 2
	FLAG_ERROR = 1
	FLAG_OFF   = 0
)

// --- ANSI color codes ---
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
)

// --- Structs ---
type LoggerConfig struct {
	Flag       int
	Identifier string
	Outputs    []io.Writer
	// ErrOutput nhận log ERROR; nil thì dùng os.Stderr.
	ErrOutput io.Writer
	// Plain tắt màu và khung, dùng khi ghi ra file.
	Plain bool
}

// Logger là một logger độc lập; không có trạng thái toàn cục nên mỗi
// lần chạy mô phỏng có thể có logger riêng.
type Logger struct {
	// mu dùng chung giữa các logger tạo bởi With vì chúng ghi cùng outputs.
	mu     *sync.Mutex
	config LoggerConfig
}

func New(config *LoggerConfig) *Logger {
	c := LoggerConfig{Flag: FLAG_INFO}
	if config != nil {
		c = *config
	}
	if len(c.Outputs) == 0 {
		c.Outputs = []io.Writer{os.Stdout}
	}
	if c.ErrOutput == nil {
		c.ErrOutput = os.Stderr
	}
	return &Logger{mu: &sync.Mutex{}, config: c}
}

// With trả về logger mới cùng cấu hình nhưng đổi Identifier.
func (l *Logger) With(identifier string) *Logger {
	c := l.config
	c.Identifier = identifier
	return &Logger{mu: l.mu, config: c}
}

func (l *Logger) Flag() int { return l.config.Flag }

func (l *Logger) Identifier() string { return l.config.Identifier }

func (l *Logger) Enabled(level int) bool { return l.config.Flag >= level }

// ParseLevel đọc tên level ("trace", "debug", "info", "warn", "error", "off").
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return FLAG_TRACE, nil
	case "debug":
		return FLAG_DEBUG, nil
	case "", "info":
		return FLAG_INFO, nil
	case "warn", "warning":
		return FLAG_WARN, nil
	case "error":
		return FLAG_ERROR, nil
	case "off", "none":
		return FLAG_OFF, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// --- Public Log API ---
func (l *Logger) Trace(msg interface{}, a ...interface{}) {
	l.log(FLAG_TRACE, Blue, "TRACE", msg, a...)
}
func (l *Logger) Debug(msg interface{}, a ...interface{}) {
	l.log(FLAG_DEBUG, Cyan, "DEBUG", msg, a...)
}
func (l *Logger) Info(msg interface{}, a ...interface{}) { l.log(FLAG_INFO, Green, "INFO", msg, a...) }
func (l *Logger) Warn(msg interface{}, a ...interface{}) { l.log(FLAG_WARN, Yellow, "WARN", msg, a...) }

func (l *Logger) Error(msg interface{}, a ...interface{}) {
	if l.config.Flag < FLAG_ERROR {
		return
	}
	l.write([]io.Writer{l.config.ErrOutput}, l.format(Red, "ERROR", msg, a...))
}

// --- Internal Logging Logic ---
func (l *Logger) log(level int, color, prefix string, msg interface{}, a ...interface{}) {
	if l.config.Flag >= level {
		l.write(l.config.Outputs, l.format(color, prefix, msg, a...))
	}
}

func (l *Logger) write(outputs []io.Writer, buffer []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, out := range outputs {
		if out != nil {
			out.Write(buffer)
		}
	}
}

func (l *Logger) format(color, prefix string, msg interface{}, a ...interface{}) []byte {
	if l.config.Plain {
		return formatPlainLog(l.config.Identifier, prefix, msg, a...)
	}
	return formatConsoleLog(l.config.Identifier, color, prefix, msg, a...)
}

func writeContent(buffer *bytes.Buffer, msg interface{}, a ...interface{}) {
	if str, ok := msg.(string); ok && len(a) > 0 {
		fmt.Fprintf(buffer, str, a...)
	} else {
		fmt.Fprint(buffer, msg)
		for _, item := range a {
			fmt.Fprintf(buffer, " %v", item)
		}
	}
}

func formatPlainLog(identifier, prefix string, msg interface{}, a ...interface{}) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(time.Now().Format("15:04:05") + " ")
	if identifier != "" {
		fmt.Fprintf(&buffer, "[%s] ", identifier)
	}
	fmt.Fprintf(&buffer, "[%s] ", prefix)
	writeContent(&buffer, msg, a...)
	buffer.WriteByte('\n')
	return buffer.Bytes()
}

func formatConsoleLog(identifier, color, prefix string, msg interface{}, a ...interface{}) []byte {
	var contentBuffer bytes.Buffer
	if identifier != "" {
		fmt.Fprintf(&contentBuffer, "[%s] ", identifier)
	}
	writeContent(&contentBuffer, msg, a...)

	lines := strings.Split(contentBuffer.String(), "\n")
	var buffer bytes.Buffer
	header := fmt.Sprintf(" %s ", time.Now().Format("15:04:05"))
	buffer.WriteString(color)
	fmt.Fprintf(&buffer, "┌─[%s]%s\n", prefix, header)
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			fmt.Fprintf(&buffer, "│  %s\n", line)
		}
	}
	buffer.WriteString("└" + strings.Repeat("─", len(prefix)+len(header)+3))
	buffer.WriteString(Reset + "\n")
	return buffer.Bytes()
}
