package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is usable before Init; it then writes text logs to stderr.
var Logger = logrus.New()

type Options struct {
	Level  string
	AppEnv string
	Dir    string
	// Quiet drops the stdout copy.
	Quiet bool
}

func Init(opts Options) error {
	Logger = logrus.New()

	appEnv := strings.ToLower(opts.AppEnv)

	//default environment is development
	if appEnv == "" {
		appEnv = "development"
	}
	if appEnv == "production" {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	Logger.SetLevel(parseLevel(opts.Level))

	if opts.Dir == "" {
		if opts.Quiet {
			Logger.SetOutput(io.Discard)
		} else {
			Logger.SetOutput(os.Stdout)
		}
		return nil
	}

	currentDate := time.Now().Format("02_01_2006")
	logFileName := currentDate + ".log"
	fullPath := filepath.Join(opts.Dir, logFileName)

	if err := os.MkdirAll(opts.Dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if opts.Quiet {
		Logger.SetOutput(file)
	} else {
		Logger.SetOutput(io.MultiWriter(os.Stdout, file))
	}
	return nil
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warning", "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
