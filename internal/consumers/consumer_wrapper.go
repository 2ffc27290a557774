package consumers

import (
	"context"
	"sync/atomic"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/nluflow/internal/clients/kafka_client"
)

// HealthAwareConsumer is a consumer loop that may pause on health flags.
type HealthAwareConsumer func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool)

// ConsumerWrapper binds health flags to a consumer loop so it fits the
// kafka_client registry.
type ConsumerWrapper struct {
	fn     HealthAwareConsumer
	health []*atomic.Bool
}

func WrapConsumer(fn HealthAwareConsumer, health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		fn:     fn,
		health: health,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(append([]*atomic.Bool(nil), cw.health...), health)
	return cw
}

func (cw ConsumerWrapper) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		cw.fn(ctx, consumer, cw.health...)
	}
}
