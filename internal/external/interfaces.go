package external

import "taskstudy/internal/scheduler"

// Compile-time checks that the provider clients satisfy the channel
// interfaces consumed by the scheduler jobs.
var (
	_ scheduler.EmailChannel    = (*BrevoClient)(nil)
	_ scheduler.TelegramChannel = (*TelegramClient)(nil)
	_ scheduler.WhatsAppChannel = (*WhatsAppClient)(nil)
)
