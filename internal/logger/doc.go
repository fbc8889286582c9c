// Package logger wraps zap for the launcher.
//
// Services receive a context and log through the scoped logger stored in it
// (WithName, WithKV), falling back to the global console logger. While the
// terminal UI owns stdout the global logger is swapped for a file logger
// built with NewWithOutput.
package logger
