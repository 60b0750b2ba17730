package logger

import (
    "time"

    "github.com/natefinch/lumberjack"
    logrus "github.com/sirupsen/logrus"
)

// Setup initializes Logrus with a rotating file target. Call once from main.
func Setup(path string) {
    if path == "" {
        path = "./logs/tourplan.log"
    }
    rotator := &lumberjack.Logger{
        Filename:   path,
        MaxSize:    10, // megabytes
        MaxBackups: 7,
        MaxAge:     7, // days
        Compress:   true,
    }

    logrus.SetOutput(rotator)
    logrus.SetFormatter(&logrus.TextFormatter{
        FullTimestamp:   true,
        TimestampFormat: time.RFC3339,
    })
    logrus.SetLevel(logrus.InfoLevel)
}

// L returns the shared logger so packages can attach fields without
// importing logrus directly at every call site.
func L() *logrus.Logger {
    return logrus.StandardLogger()
}
