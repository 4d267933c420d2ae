package simulation

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/meta-node-blockchain/om-generals/pkg/city"
	"github.com/meta-node-blockchain/om-generals/pkg/events"
	"github.com/meta-node-blockchain/om-generals/pkg/generals"
	"github.com/meta-node-blockchain/om-generals/pkg/logger"
	"github.com/meta-node-blockchain/om-generals/pkg/loggerfile"
)

// LoggerSink in sự kiện ra logger, mỗi nguồn một Identifier riêng.
func LoggerSink(l *logger.Logger) events.Sink {
	var mu sync.Mutex
	byName := make(map[string]*logger.Logger)
	get := func(source string) *logger.Logger {
		mu.Lock()
		defer mu.Unlock()
		sl, ok := byName[source]
		if !ok {
			sl = l.With(source)
			byName[source] = sl
		}
		return sl
	}

	return events.SinkFunc(func(e events.Event) {
		logEvent(get(e.Source), e)
	})
}

// logEvent ghi một sự kiện theo level: lưu lượng thông điệp ở DEBUG, bất thường ở
// WARN, còn lại ở INFO.
func logEvent(l *logger.Logger, e events.Event) {
	line := strings.TrimPrefix(e.String(), e.Source+" ")
	switch e.Kind {
	case events.KindSent, events.KindRelayed, events.KindReceived, events.KindTallied:
		l.Debug(line)
	case events.KindFault, events.KindTimeout, events.KindWithheld:
		l.Warn(line)
	default:
		l.Info(line)
	}
}

// LogFileName trả về tên file log cho một nguồn sự kiện:
// supreme_general.txt, general<id>.txt hoặc city.txt.
func LogFileName(source string) string {
	if source == city.Source || source == generals.CommanderTag {
		return source + ".txt"
	}
	if id, err := generals.ParseSenderTag(source); err == nil {
		return fmt.Sprintf("general%d.txt", id)
	}
	return "main.txt"
}

// FileSinks ghi mỗi nguồn sự kiện vào file riêng trong một thư mục, qua một logger
// dạng plain ghi mọi level. File được mở khi nguồn đó phát sự kiện đầu tiên.
type FileSinks struct {
	dir   string
	mu    sync.Mutex
	files map[string]*roleFile
	err   error
}

type roleFile struct {
	file *loggerfile.FileLogger
	log  *logger.Logger
}

func NewFileSinks(dir string) *FileSinks {
	return &FileSinks{dir: dir, files: make(map[string]*roleFile)}
}

func (f *FileSinks) Emit(e events.Event) {
	name := LogFileName(e.Source)

	f.mu.Lock()
	rf, ok := f.files[name]
	if !ok {
		fl, err := loggerfile.NewFileLogger(f.dir, name)
		if err != nil {
			if f.err == nil {
				f.err = err
			}
			f.mu.Unlock()
			return
		}
		fl.Info("log of %s, run %v", e.Source, e.Fields["run"])
		rf = &roleFile{
			file: fl,
			log: logger.New(&logger.LoggerConfig{
				Flag:       logger.FLAG_TRACE,
				Identifier: e.Source,
				Outputs:    []io.Writer{fl},
				ErrOutput:  fl,
				Plain:      true,
			}),
		}
		f.files[name] = rf
	}
	f.mu.Unlock()

	// "main.txt" có thể nhận nhiều nguồn; giữ identifier đúng nguồn.
	l := rf.log
	if e.Source != l.Identifier() {
		l = l.With(e.Source)
	}
	logEvent(l, e)
}

// Err trả về lỗi mở file đầu tiên (nếu có).
func (f *FileSinks) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *FileSinks) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var first error
	for name, rf := range f.files {
		if err := rf.file.Close(); err != nil && first == nil {
			first = err
		}
		delete(f.files, name)
	}
	return first
}
