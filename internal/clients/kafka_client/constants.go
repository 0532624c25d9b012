package kafka_client

const (
	PRODUCE_RETRIES  = 3
	FLUSH_TIMEOUT_MS = 5000
)
