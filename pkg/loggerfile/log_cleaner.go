package loggerfile

import (
	"os"
	"path/filepath"

	"github.com/meta-node-blockchain/om-generals/pkg/logger"
)

// LogCleaner xóa log của lần chạy trước
type LogCleaner struct {
	logDir string
	log    *logger.Logger
}

// NewLogCleaner tạo mới một LogCleaner. l nil thì không in gì.
func NewLogCleaner(logDir string, l *logger.Logger) *LogCleaner {
	if l == nil {
		l = logger.New(&logger.LoggerConfig{Flag: logger.FLAG_OFF})
	}
	return &LogCleaner{logDir: logDir, log: l}
}

// CleanLogs xóa tất cả file và thư mục con trong thư mục logs, giữ lại chính thư mục đó.
func (lc *LogCleaner) CleanLogs() error {
	lc.log.Debug("Bắt đầu xóa logs trong %s", lc.logDir)

	// Kiểm tra thư mục logs có tồn tại không
	entries, err := os.ReadDir(lc.logDir)
	if os.IsNotExist(err) {
		lc.log.Debug("Thư mục logs không tồn tại, bỏ qua việc xóa")
		return nil
	}
	if err != nil {
		lc.log.Error("Không thể đọc thư mục %s: %v", lc.logDir, err)
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(lc.logDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			lc.log.Error("Không thể xóa %s: %v", path, err)
			return err
		}
		lc.log.Trace("Đã xóa: %s", path)
	}

	lc.log.Debug("Hoàn thành xóa logs")
	return nil
}
