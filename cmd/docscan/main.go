package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan/internal/capture"
	"github.com/ironsheep/docscan/internal/config"
	docimage "github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/logger"
	"github.com/ironsheep/docscan/internal/scan"
	"github.com/ironsheep/docscan/internal/server"
	"github.com/ironsheep/docscan/internal/stability"
	"github.com/ironsheep/docscan/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Vision:     %s\n", vision.Backend)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	cfg, err := config.Load(os.Getenv("DOCSCAN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "docscan: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	server.Version = Version

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
		"vision":  vision.Backend,
	}).Debug("docscan starting")

	var cmdErr error
	switch {
	case len(os.Args) == 1 || os.Args[1] == "serve":
		cmdErr = server.New(cfg).Run()
	case os.Args[1] == "scan" && len(os.Args) == 4:
		cmdErr = scanFile(cfg, os.Args[2], os.Args[3])
	case os.Args[1] == "watch" && len(os.Args) == 4:
		cmdErr = watch(cfg, os.Args[2], os.Args[3])
	default:
		usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		logger.WithError(cmdErr).Error("docscan failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("docscan - document capture and perspective correction")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docscan [serve]                     Run the MCP server on stdin/stdout")
	fmt.Println("  docscan scan <image> <out.png>      Rectify the document in a stored image")
	fmt.Println("  docscan watch <source> <out-dir>    Capture documents when the view is stable")
	fmt.Println()
	fmt.Println("  <source> is a directory of frames, or \"camera\" to open the configured")
	fmt.Println("  device (requires a build with -tags gocv). Press Enter to capture now.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DOCSCAN_CONFIG=<path>        YAML configuration file")
	fmt.Println("  DOCSCAN_LOG_LEVEL=debug      Enable debug logging")
	fmt.Println("  DOCSCAN_DEVICE=<id>          Camera index for watch camera")
}

func scanFile(cfg *config.Config, in, out string) error {
	sc := scan.NewScanner(vision.New(), docimage.NewImageCache(), cfg.ScanOptions())
	res, err := sc.ScanFile(in)
	if err != nil {
		return err
	}
	if err := imaging.Save(res.Image, out); err != nil {
		return fmt.Errorf("failed to save %s: %w", out, err)
	}
	logger.WithFields(logrus.Fields{
		"scan_id": res.ID,
		"ratio":   res.Ratio,
		"output":  out,
	}).Info("document saved")
	return nil
}

func watch(cfg *config.Config, source, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var dev capture.Device
	var err error
	if source == "camera" {
		dev, err = capture.OpenCamera(cfg.Capture.Device)
	} else {
		dev, err = capture.OpenDir(source, false)
	}
	if err != nil {
		return err
	}
	defer dev.Close()

	v := vision.New()
	mon := stability.NewMonitor(v, cfg.StabilityOptions())
	sc := scan.NewScanner(v, nil, cfg.ScanOptions())
	sessCfg := capture.SessionConfig{
		TickInterval: cfg.Capture.TickInterval,
		FocusDelay:   cfg.Capture.FocusDelay,
		FocusValue:   cfg.Capture.FocusValue,
	}

	sess := capture.NewSession(dev, mon, sc, sessCfg, func(c capture.Capture) {
		if c.Err != nil {
			return
		}
		path := filepath.Join(outDir, c.Result.ID+".png")
		if err := imaging.Save(c.Result.Image, path); err != nil {
			logger.WithError(err).WithField("path", path).Error("failed to save document")
			return
		}
		logger.WithFields(logrus.Fields{
			"trace_id": c.Frame.TraceID,
			"forced":   c.Forced,
			"path":     path,
		}).Info("document saved")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		in := bufio.NewScanner(os.Stdin)
		for in.Scan() {
			sess.ForceCapture()
		}
	}()

	err = sess.Run(ctx)
	st := sess.Status()
	logger.WithFields(logrus.Fields{
		"frames":   st.Frames,
		"captures": st.Captures,
	}).Info("watch stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
