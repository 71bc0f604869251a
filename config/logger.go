package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugLogFile is created in the log directory when CHATBOT_DEBUG is set.
const DebugLogFile = "chatbot-debug.log"

// NewLogger builds the process logger from the [logging] section.
//
// Records at or above the configured level go to stderr (console or json
// encoding) and, if logging.file is set, to that file as json. With debug
// enabled every record, including debug level, is also appended to
// debugDir/chatbot-debug.log.
func NewLogger(cfg LoggingConfig, debug bool, debugDir string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
		}
		level = parsed
	}

	var consoleEncoder zapcore.Encoder
	switch cfg.Encoding {
	case "", "console":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.CallerKey = zapcore.OmitKey
		consoleEncoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("%w: logging.encoding must be console or json, got %q", ErrInvalidConfig, cfg.Encoding)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		f, err := openLogFile(ExpandPath(cfg.File))
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), f, level))
	}

	if debug {
		f, err := openLogFile(filepath.Join(debugDir, DebugLogFile))
		if err != nil {
			// Debug logging is optional; keep running without it.
			fmt.Fprintf(os.Stderr, "Warning: could not open debug log: %v\n", err)
		} else {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig()), f, zapcore.DebugLevel))
		}
	}

	logger := zap.New(zapcore.NewTee(cores...))
	if debug {
		logger.Debug("debug logging started", zap.String("CHATBOT_DEBUG", os.Getenv("CHATBOT_DEBUG")))
	}

	return logger, nil
}

// openLogFile opens path for appending with 0600 permissions (logs may
// contain conversation content).
func openLogFile(path string) (zapcore.WriteSyncer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	return zapcore.AddSync(f), nil
}
