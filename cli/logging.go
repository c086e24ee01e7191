package cli

import (
	"fmt"
	"io"

	"github.com/TFMV/icetour/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the diagnostic logger. Logs go to w, which is stderr in normal
// use, so they never mix with table output.
func newLogger(level, format string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var encoder zapcore.Encoder
	switch format {
	case "", "console":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unsupported log format: %s (use console or json)", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core), nil
}

// effectiveLogLevel decides the level from the flags and the config file
func effectiveLogLevel(verbose bool, cfg *config.Config) string {
	if verbose {
		return "debug"
	}
	if cfg != nil && cfg.Logging.Level != "" {
		return cfg.Logging.Level
	}
	return "warn"
}
