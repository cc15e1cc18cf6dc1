package ops

import (
	"go.uber.org/zap"
)

var log = zap.NewNop().Sugar()

// InitLogger swaps in a real logger when --debug is set.  Called once
// from main before command dispatch.
func InitLogger() error {

	if !CLI.Debug {
		return nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	log = logger.Sugar()
	return nil
}
