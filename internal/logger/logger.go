package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"porosity-hmi/internal/config"
)

// Log file names, one per level.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	zap    *zap.Logger
	sugar  *zap.SugaredLogger
	logDir string
	files  []*os.File
	mu     sync.Mutex
}

// NewLogger creates a Logger and ensures the log directory exists.
func NewLogger(cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Log.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{logDir: cfg.Log.Directory}
	if err := l.setupCores(cfg.Server.Mode); err != nil {
		l.closeFiles()
		return nil, err
	}
	return l, nil
}

// NewNop returns a Logger that discards everything. Used by tests.
func NewNop() *Logger {
	z := zap.NewNop()
	return &Logger{zap: z, sugar: z.Sugar()}
}

// setupCores tees a console core with one file core per level.
func (l *Logger) setupCores(mode string) error {
	var encCfg zapcore.EncoderConfig
	if mode == "release" {
		encCfg = zap.NewProductionEncoderConfig()
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCfg := encCfg
	fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCfg := encCfg
	if mode != "release" {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	infoFile, err := l.openLogFile(InfoFile)
	if err != nil {
		return err
	}
	warningFile, err := l.openLogFile(WarningFile)
	if err != nil {
		return err
	}
	errorFile, err := l.openLogFile(ErrorFile)
	if err != nil {
		return err
	}

	only := func(lvl zapcore.Level) zap.LevelEnablerFunc {
		return func(l zapcore.Level) bool { return l == lvl }
	}
	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })
	errorUp := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })

	fileEnc := zapcore.NewConsoleEncoder(fileCfg)
	consoleEnc := zapcore.NewConsoleEncoder(consoleCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), belowError),
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), errorUp),
		zapcore.NewCore(fileEnc, zapcore.AddSync(infoFile), only(zapcore.InfoLevel)),
		zapcore.NewCore(fileEnc, zapcore.AddSync(warningFile), only(zapcore.WarnLevel)),
		zapcore.NewCore(fileEnc, zapcore.AddSync(errorFile), errorUp),
	)

	l.zap = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	l.sugar = l.zap.Sugar()
	return nil
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(name string) (*os.File, error) {
	file, err := os.OpenFile(filepath.Join(l.logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
	}
	l.files = append(l.files, file)
	return file, nil
}

// Zap returns the structured logger, for callers that want typed fields.
func (l *Logger) Zap() *zap.Logger {
	return l.zap.WithOptions(zap.AddCallerSkip(-1))
}

// Dir returns the directory holding the log files.
func (l *Logger) Dir() string {
	return l.logDir
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.sugar.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logDir == "" {
		return nil
	}
	if err := os.Truncate(filepath.Join(l.logDir, fileName), 0); err != nil {
		l.Error("Error truncating log file %s: %v", fileName, err)
		return err
	}

	l.Info("Log file %s has been cleared.", fileName)
	return nil
}

// Sync flushes buffered entries and closes the log files.
func (l *Logger) Sync() {
	_ = l.zap.Sync()
	l.closeFiles()
}

func (l *Logger) closeFiles() {
	for _, f := range l.files {
		_ = f.Close()
	}
	l.files = nil
}
