// Package logger provides structured logging for artifactstore using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.GetGlobalLogger().WithComponent("storage")
//	log.Info("blob stored", logger.Fields("path", key, "bytes", n))
package logger
