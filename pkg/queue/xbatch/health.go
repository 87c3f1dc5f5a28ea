package xbatch

import (
	"fmt"
	"time"
)

// HealthStatus 表示分发器的健康状态。
type HealthStatus string

const (
	// HealthStatusHealthy 队列深度未超过告警阈值。
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusUnhealthy 队列深度超过告警阈值，说明处理速度跟不上写入。
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck 健康检查结果。
type HealthCheck struct {
	// Name 分发器名称
	Name string `json:"name"`
	// Status 健康状态
	Status HealthStatus `json:"status"`
	// State 当前状态机状态
	State string `json:"state"`
	// Depth 当前队列深度
	Depth int `json:"depth"`
	// Threshold 告警阈值
	Threshold int `json:"threshold"`
	// Closed 是否已关闭
	Closed bool `json:"closed"`
	// Message 附加说明
	Message string `json:"message,omitempty"`
	// CheckTime 检查时间
	CheckTime time.Time `json:"check_time"`
}

// Healthy 报告是否健康。
func (h HealthCheck) Healthy() bool {
	return h.Status == HealthStatusHealthy
}

// Health 返回当前健康状态：深度 <= 阈值为 healthy，否则 unhealthy。
func (p *Processor[T]) Health() HealthCheck {
	depth := p.buffer.Len()
	threshold := int(p.threshold.Load())

	h := HealthCheck{
		Name:      p.name,
		Status:    HealthStatusHealthy,
		State:     p.State().String(),
		Depth:     depth,
		Threshold: threshold,
		Closed:    p.closed.Load(),
		CheckTime: time.Now(),
	}
	if depth > threshold {
		h.Status = HealthStatusUnhealthy
		h.Message = fmt.Sprintf("queue depth %d exceeds alert threshold %d", depth, threshold)
	}
	return h
}

// SetAlertThreshold 在运行时调整告警阈值，n <= 0 时忽略。
func (p *Processor[T]) SetAlertThreshold(n int) {
	if n > 0 {
		p.threshold.Store(int64(n))
	}
}

// AlertThreshold 返回当前告警阈值。
func (p *Processor[T]) AlertThreshold() int {
	return int(p.threshold.Load())
}
