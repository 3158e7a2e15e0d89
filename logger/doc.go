// Package logger wraps zerolog with the field conventions used across huddle:
// every log line can carry the emitting component, the request id, and the
// meeting it concerns.
//
//	log := logger.New(&cfg.Logging, "huddle").WithComponent("audio")
//	log.Info("chunk appended", logger.MeetingFields(id, "bytes", n))
package logger
