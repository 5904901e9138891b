package delivery

import "github.com/bhumika-04/EmailRpaSolution-sub001/pkg/broker"

// Pipeline stage channels.
const (
	ChannelIngestion     = "raw-ingestion"
	ChannelExecution     = "job-execution"
	ChannelNotifications = "notifications"
	ChannelDeadLetter    = broker.DeadLetterChannel
)

// Channels returns the stage channels declared at startup. The
// dead-letter channel is declared alongside them by the broker.
func Channels() []string {
	return []string{ChannelIngestion, ChannelExecution, ChannelNotifications}
}
