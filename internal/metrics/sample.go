// Package metrics collects system resource samples and maintains a bounded
// history plus threshold-triggered alerts, grounded on the original
// implementation's MetricsCollector/MetricsStorage/AlertManager but reading
// Linux's /proc filesystem instead of macOS sysctl/CommonCrypto calls.
package metrics

import "time"

// Sample is one point-in-time snapshot of system resource usage.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`

	CPUPercent float64 `json:"cpu_percent"`
	CPUUser    float64 `json:"cpu_user"`
	CPUSystem  float64 `json:"cpu_system"`
	CPUIdle    float64 `json:"cpu_idle"`

	MemoryTotal   uint64  `json:"memory_total"`
	MemoryUsed    uint64  `json:"memory_used"`
	MemoryFree    uint64  `json:"memory_free"`
	MemoryPercent float64 `json:"memory_percent"`

	DiskTotal   uint64  `json:"disk_total"`
	DiskUsed    uint64  `json:"disk_used"`
	DiskFree    uint64  `json:"disk_free"`
	DiskPercent float64 `json:"disk_percent"`

	DiskReads         uint64  `json:"disk_reads"`
	DiskWrites        uint64  `json:"disk_writes"`
	DiskDataRead      uint64  `json:"disk_data_read"`
	DiskDataWritten   uint64  `json:"disk_data_written"`
	DiskReadRate      float64 `json:"disk_read_rate"`
	DiskWriteRate     float64 `json:"disk_write_rate"`
	DiskDataReadRate  float64 `json:"disk_data_read_rate"`
	DiskDataWriteRate float64 `json:"disk_data_write_rate"`

	NetworkRxBytes   uint64  `json:"network_rx_bytes"`
	NetworkTxBytes   uint64  `json:"network_tx_bytes"`
	NetworkRxPackets uint64  `json:"network_rx_packets"`
	NetworkTxPackets uint64  `json:"network_tx_packets"`
	NetworkRxRate    float64 `json:"network_rx_rate"`
	NetworkTxRate    float64 `json:"network_tx_rate"`
}
