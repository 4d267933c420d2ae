package loggerfile

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileLogger struct quản lý ghi log vào file
type FileLogger struct {
	path  string
	file  *os.File
	mutex sync.Mutex
}

// NewFileLogger tạo mới một FileLogger ghi vào logDir/filePath.
// Thư mục được tạo nếu chưa tồn tại; file được mở ở chế độ append.
func NewFileLogger(logDir, filePath string) (*FileLogger, error) {
	if logDir == "" {
		logDir = "logs"
	}
	full := filepath.Join(logDir, filePath)

	// Tạo thư mục (và thư mục con) nếu chưa tồn tại
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	file, err := os.OpenFile(full, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileLogger{path: full, file: file}, nil
}

// Path trả về đường dẫn đầy đủ của file log.
func (fl *FileLogger) Path() string {
	if fl == nil {
		return ""
	}
	return fl.path
}

// Log ghi một message đơn giản vào file
func (fl *FileLogger) Log(message string) {
	if fl == nil {
		log.Println("FileLogger is nil. Skipping Log.")
		return
	}

	fl.mutex.Lock()
	defer fl.mutex.Unlock()

	timestamp := time.Now().Format(time.RFC3339)
	logMessage := fmt.Sprintf("%s: %s\n", timestamp, message)
	if _, err := fl.file.WriteString(logMessage); err != nil {
		log.Printf("Failed to write log message: %v", err)
	}
}

// Info ghi một message định dạng vào file
func (fl *FileLogger) Info(message interface{}, a ...interface{}) {
	if fl == nil {
		log.Println("FileLogger is nil. Skipping Info log.")
		return
	}
	fl.Log(fmt.Sprintf(fmt.Sprint(message), a...))
}

// Write cho phép dùng FileLogger làm output của logger.Logger.
func (fl *FileLogger) Write(p []byte) (int, error) {
	if fl == nil {
		return 0, os.ErrInvalid
	}
	fl.mutex.Lock()
	defer fl.mutex.Unlock()
	return fl.file.Write(p)
}

// Close đóng file log
func (fl *FileLogger) Close() error {
	if fl == nil {
		return nil
	}
	fl.mutex.Lock()
	defer fl.mutex.Unlock()
	if err := fl.file.Close(); err != nil {
		return fmt.Errorf("error closing log file %s: %w", fl.path, err)
	}
	return nil
}
