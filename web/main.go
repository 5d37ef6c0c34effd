package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/df07/go-mesh-pathtracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes-dir", "scenes", "Directory of OBJ scenes offered besides the built-in ones")
	verbose := flag.Bool("verbose", false, "Enable development logging")
	flag.Parse()

	newLogger := zap.NewProduction
	if *verbose {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		os.Stderr.WriteString("Error creating logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	webServer := server.NewServer(*port, *scenesDir, logger)
	logger.Sugar().Infof("Mesh path tracer web server, visit http://localhost:%d/api/scenes", *port)

	if err := webServer.Start(ctx); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
