package log

import (
	"io"
	"log"
	"os"
	"sync"
)

const prefix = "SipScore::Server	"

// for request and store event logging
var logWriter io.Writer
var logger *log.Logger
var logInit sync.Once

// initLogger initializes the logger to start appending on stdout, so the
// process plays well with container log collection
func initLogger() {
	logWriter = io.MultiWriter(os.Stdout)
	logger = log.New(logWriter, prefix, log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC|log.Lshortfile)
}

// WriteLog appends a given formatted string on the log
func WriteLog(format string, params ...interface{}) {
	logInit.Do(initLogger)
	logger.Printf(format, params...)
}

// Logger gives the logger instance to enable logging events
func Logger() *log.Logger {
	logInit.Do(initLogger)
	return logger
}
