package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/pkg/logger"
)

type propagateJob struct {
	view  model.UserView
	enqAt time.Time
}

// IdentityPropagator fans a changed username/avatar out to every follower
// snapshot that references the user. Fire-and-forget: the triggering request
// enqueues and moves on, worker failures are logged and dropped. Readers may
// see the old identity until a pass completes or the snapshot TTL expires.
type IdentityPropagator struct {
	followers *cache.FollowerStore
	ch        chan propagateJob
	metricsCh chan time.Duration
}

func NewIdentityPropagator(followers *cache.FollowerStore, queueSize int) *IdentityPropagator {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &IdentityPropagator{
		followers: followers,
		ch:        make(chan propagateJob, queueSize),
		metricsCh: make(chan time.Duration, 65536),
	}
}

func (p *IdentityPropagator) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-p.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					patched, err := p.followers.PatchIdentity(ctx, job.view)
					cancel()
					if err != nil {
						logger.Warn("identity fanout failed",
							zap.String("user", job.view.ID), zap.Int("patched", patched), zap.Error(err))
					}
					if !job.enqAt.IsZero() {
						select {
						case p.metricsCh <- time.Since(job.enqAt):
						default:
						}
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(p.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// Enqueue submits a changed identity for fan-out. Never blocks; a full queue
// drops the job, the snapshot TTL covers the divergence.
func (p *IdentityPropagator) Enqueue(view model.UserView) {
	select {
	case p.ch <- propagateJob{view: view, enqAt: time.Now()}:
	default:
		logger.Warn("propagator queue full, drop fanout", zap.String("user", view.ID))
	}
}

// Metrics 返回扇出落地耗时的只读通道（每处理一条发送一次 duration）。
func (p *IdentityPropagator) Metrics() <-chan time.Duration { return p.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (p *IdentityPropagator) QueueLen() int { return len(p.ch) }
