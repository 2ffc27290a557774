package kafka_client

import "time"

const (
	KAFKA_TOPIC_ANALYZE_REQUEST = "analyze-request" // jobs waiting for analysis
	KAFKA_TOPIC_ANALYZE_RESULTS = "analyze-results" // finished analyses, consumed for storage
)

const (
	BATCH_SIZE    = 50
	BATCH_TIMEOUT = 5 * time.Second
	MAX_RETRIES   = 5
	RETRY_DELAY   = 2 * time.Second
	POLL_TIMEOUT  = 1 * time.Second
)
