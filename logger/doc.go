// Package logger provides structured logging on zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logger:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("endpoint")
//	log.Debug("request completed", logger.Fields("status", 200))
package logger
