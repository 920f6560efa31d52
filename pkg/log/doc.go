// Package log provides structured logging for the scheduling pipeline using
// zerolog. Call Init once at process start, then obtain component loggers
// with WithComponent/WithProblemID/WithStage/WithVehicle so every log line
// carries enough context to follow a solve across stages without grepping.
package log
