package common

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// zkvLogger writes logfmt lines to the shared log sink:
//
//	ts=2025-01-02T15:04:05Z level=INFO logger=shard/3 node=0.0.0.0:8080 msg="created local store"
//
// The node field is the RPC endpoint of the server and is left out until InitLoggers ran.
type zkvLogger struct {
	name  string
	level atomic.Int32
}

func (l *zkvLogger) SetLevel(level logger.LogLevel) {
	l.level.Store(int32(level))
}

func (l *zkvLogger) enabled(level logger.LogLevel) bool {
	return logger.LogLevel(l.level.Load()) >= level
}

func (l *zkvLogger) Debugf(format string, args ...interface{}) {
	if l.enabled(logger.DEBUG) {
		l.log("DEBUG", format, args...)
	}
}

func (l *zkvLogger) Infof(format string, args ...interface{}) {
	if l.enabled(logger.INFO) {
		l.log("INFO", format, args...)
	}
}

func (l *zkvLogger) Warningf(format string, args ...interface{}) {
	if l.enabled(logger.WARNING) {
		l.log("WARN", format, args...)
	}
}

func (l *zkvLogger) Errorf(format string, args ...interface{}) {
	if l.enabled(logger.ERROR) {
		l.log("ERROR", format, args...)
	}
}

func (l *zkvLogger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.log("PANIC", "%s", msg)
	panic(msg)
}

func (l *zkvLogger) log(level string, format string, args ...interface{}) {
	var b strings.Builder
	b.WriteString("ts=")
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" level=")
	b.WriteString(level)
	b.WriteString(" logger=")
	b.WriteString(l.name)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.node != "" {
		b.WriteString(" node=")
		b.WriteString(sink.node)
	}
	b.WriteString(" msg=")
	b.WriteString(strconv.Quote(fmt.Sprintf(format, args...)))
	b.WriteByte('\n')
	_, _ = io.WriteString(sink.out, b.String())
}

// sink is the output shared by all zKV loggers
var sink = struct {
	mu   sync.Mutex
	out  io.Writer
	node string
}{out: os.Stdout}

// SetLogOutput redirects the output of all zKV loggers (default: stdout)
func SetLogOutput(w io.Writer) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.out = w
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the dragonboat logger.Factory interface
func CreateLogger(pkgName string) logger.ILogger {
	l := &zkvLogger{name: pkgName}
	l.SetLevel(logger.INFO)
	return l
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return 0, errors.Newf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// Names of the loggers used by zKV
const (
	LoggerRPC       = "rpc"
	LoggerTransport = "transport/rpc"
	LoggerAPI       = "api"
)

// ShardLoggerName returns the name of the logger of a store shard
func ShardLoggerName(shardId uint64) string {
	return "shard/" + strconv.FormatUint(shardId, 10)
}

// ShardLogger returns the logger of a store shard
func ShardLogger(shardId uint64) logger.ILogger {
	return logger.GetLogger(ShardLoggerName(shardId))
}

var factoryOnce sync.Once

// InitLoggers installs the custom logger factory, tags all lines with the RPC endpoint of
// the server and sets the level of the zKV loggers, including one logger per configured shard.
func InitLoggers(config ServerConfig) error {
	level, err := ParseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}

	// Set as the global logger factory
	factoryOnce.Do(func() { logger.SetLoggerFactory(CreateLogger) })

	sink.mu.Lock()
	sink.node = config.Endpoint
	sink.mu.Unlock()

	names := []string{LoggerRPC, LoggerTransport, LoggerAPI}
	for _, shard := range config.Shards {
		names = append(names, ShardLoggerName(shard.ShardID))
	}
	for _, name := range names {
		logger.GetLogger(name).SetLevel(level)
	}
	return nil
}
