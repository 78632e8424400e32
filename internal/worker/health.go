package worker

import (
	"sync"
	"time"
)

// Статусы задач.
const (
	TaskStatusHealthy = "healthy"
	TaskStatusFailed  = "failed"
	TaskStatusStopped = "stopped"
)

// TaskHealth — состояние одной задачи.
// Текст ошибки не хранится: snapshot отдаётся наружу через /healthz.
type TaskHealth struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthStatus — снимок состояния всех задач.
type HealthStatus struct {
	Status string                `json:"status"`
	Tasks  map[string]TaskHealth `json:"tasks"`
}

// HealthTracker отслеживает состояние задач воркера.
// Безопасен для конкурентного использования.
type HealthTracker struct {
	mu    sync.RWMutex
	tasks map[string]TaskHealth
}

// NewHealthTracker создаёт пустой HealthTracker.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{tasks: make(map[string]TaskHealth)}
}

// MarkHealthy отмечает задачу как работающую.
func (h *HealthTracker) MarkHealthy(name string) { h.set(name, TaskStatusHealthy) }

// MarkFailed отмечает задачу как упавшую.
func (h *HealthTracker) MarkFailed(name string) { h.set(name, TaskStatusFailed) }

// MarkStopped отмечает задачу как штатно остановленную.
// Упавшая задача остаётся failed до следующего запуска.
func (h *HealthTracker) MarkStopped(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.tasks[name]; ok && cur.Status == TaskStatusFailed {
		return
	}
	h.tasks[name] = TaskHealth{Status: TaskStatusStopped, UpdatedAt: time.Now()}
}

func (h *HealthTracker) set(name, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks[name] = TaskHealth{Status: status, UpdatedAt: time.Now()}
}

// Get возвращает состояние задачи.
func (h *HealthTracker) Get(name string) (TaskHealth, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	th, ok := h.tasks[name]
	return th, ok
}

// IsHealthy возвращает false, если хотя бы одна задача упала.
func (h *HealthTracker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.isHealthyLocked()
}

// Snapshot возвращает копию состояния всех задач.
func (h *HealthTracker) Snapshot() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	tasks := make(map[string]TaskHealth, len(h.tasks))
	for name, th := range h.tasks {
		tasks[name] = th
	}

	status := TaskStatusHealthy
	if !h.isHealthyLocked() {
		status = TaskStatusFailed
	}
	return HealthStatus{Status: status, Tasks: tasks}
}

// isHealthyLocked — вызывающий держит read lock.
func (h *HealthTracker) isHealthyLocked() bool {
	for _, th := range h.tasks {
		if th.Status == TaskStatusFailed {
			return false
		}
	}
	return true
}
