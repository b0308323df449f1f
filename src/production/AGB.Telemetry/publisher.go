package telemetry

// CommandPublisher is the outbound port to the device command channel.
// Publishing is best-effort, at-most-once from the caller's perspective:
// implementations dispatch the command without blocking and report the
// outcome only to their log sink. A failed publish never reaches the
// caller and never rolls back committed state.
type CommandPublisher interface {
	PublishPumpCommand(deviceID string, on bool)
}
