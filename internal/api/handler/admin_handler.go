package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/socialnet/pkg/response"
)

// FanoutStatus 管理端：身份扇出队列状态（队列深度 + 最近落地耗时采样）
// @Summary 扇出队列状态
// @Tags 管理
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/fanout [get]
func (h *Handler) FanoutStatus(c *gin.Context) {
	samples := make([]string, 0, 32)
drain:
	for len(samples) < cap(samples) {
		select {
		case d := <-h.propagator.Metrics():
			samples = append(samples, d.Round(time.Millisecond).String())
		default:
			break drain
		}
	}
	response.Success(c, gin.H{
		"queue_len": h.propagator.QueueLen(),
		"latencies": samples,
	})
}
