package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Reconciler     *ReconcilerReport     `json:"reconciler,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
