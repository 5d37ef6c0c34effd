package server

import (
	"strings"

	"go.uber.org/zap"

	"github.com/df07/go-mesh-pathtracer/pkg/core"
)

// renderLogger implements core.Logger by forwarding renderer progress to the
// server log, tagged with the render ID
type renderLogger struct {
	sugar *zap.SugaredLogger
}

// newRenderLogger creates a logger for a specific render
func newRenderLogger(base *zap.Logger, renderID string) core.Logger {
	return renderLogger{sugar: base.Sugar().With("render", renderID)}
}

// Printf implements core.Logger interface
func (l renderLogger) Printf(format string, args ...interface{}) {
	l.sugar.Infof(strings.TrimSuffix(format, "\n"), args...)
}
