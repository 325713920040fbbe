// Package daemon runs the PixGonz HTTP backend: multipart image uploads in,
// PNG responses out. All processing is delegated to the raster, segment and
// calibrate packages; the daemon itself is transport, history plumbing and
// lifecycle.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pixgonz/pixgonz/pkg/config"
	"github.com/pixgonz/pixgonz/pkg/history"
)

var (
	conf  config.Config
	store *history.Store
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.Use(corsMiddleware())
	router.Use(maxUploadMiddleware(conf.MaxUploadBytes()))

	router.GET("/", index)
	router.GET("/version", getVersion)
	router.POST("/process", postProcess)

	phase1 := router.Group("/phase1")
	phase1.POST("/brightness", postBrightness)
	phase1.POST("/contrast", postContrast)
	phase1.POST("/rotate", postRotate)
	phase1.POST("/grayscale", postGrayscale)
	phase1.POST("/blur", postBlur)
	phase1.POST("/sharpen", postSharpen)
	phase1.POST("/mask", postMask)

	phase2 := router.Group("/phase2")
	phase2.POST("/segmentation", postSegmentation)
	phase2.POST("/color-adjust", postColorAdjust)
	phase2.POST("/undo", postUndo)
	phase2.POST("/redo", postRedo)

	router.POST("/phase3/saturation-correction", postSaturationCorrection)

	return router
}

// Run starts the daemon in the foreground and blocks until SIGINT/SIGTERM.
// listenAddr, when non-empty, overrides the configured listen address.
func Run(configPath string, listenAddr string) error {
	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		conf.SetListenAddress(listenAddr)
	}
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	store, err = history.NewStore(conf.HistoryDir())
	if err != nil {
		return err
	}

	router := setupRoutes()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := conf.Load(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
		}
	}()

	pruner := NewScheduler(func() error {
		removed, err := store.Prune(conf.HistoryMaxAge())
		if err != nil {
			return err
		}
		if removed > 0 {
			logrus.Infof("pruned %d stale history sessions", removed)
		}
		return nil
	}, nil)
	if err := pruner.Schedule(conf.HistoryPruneSchedule()); err != nil {
		logrus.Errorf("invalid history prune schedule %q: %v", conf.HistoryPruneSchedule(), err)
	} else {
		pruner.Start()
	}

	l, err := net.Listen("tcp", conf.ListenAddress())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler: router,
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal %q: shutting down", sig)

	logrus.Info("stopping history pruner")
	pruner.Stop()

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
