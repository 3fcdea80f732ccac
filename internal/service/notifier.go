package service

import (
	"context"
	"encoding/json"
	"examhub_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

// AssignmentEvent 每次同步写入后发布，供在线客户端刷新
type AssignmentEvent struct {
	ExamID     string                 `json:"examId"`
	CourseID   string                 `json:"courseId"`
	Status     model.AssignmentStatus `json:"status"`
	Inserted   int                    `json:"inserted"`
	Updated    int                    `json:"updated"`
	OccurredAt time.Time              `json:"occurredAt"`
}

type AssignmentNotifier interface {
	Notify(ctx context.Context, event AssignmentEvent) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, AssignmentEvent) error { return nil }

type redisNotifier struct {
	rdb     *redis.Client
	channel string
}

func NewRedisNotifier(rdb *redis.Client, channel string) AssignmentNotifier {
	return &redisNotifier{rdb: rdb, channel: channel}
}

func (n *redisNotifier) Notify(ctx context.Context, event AssignmentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, payload).Err()
}
