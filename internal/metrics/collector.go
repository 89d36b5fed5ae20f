package metrics

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Collector is non-copyable: it carries previous-sample state used to turn
// cumulative /proc counters into per-second rates, the same role the
// original's prev_*_ fields play.
type Collector struct {
	diskPath string

	firstCPU      bool
	prevUser      uint64
	prevSystem    uint64
	prevIdle      uint64
	prevTotal     uint64

	firstDiskIO    bool
	prevDiskReads  uint64
	prevDiskWrites uint64
	prevDiskRead   uint64
	prevDiskWrite  uint64
	prevDiskIOTime time.Time

	firstNetwork   bool
	prevRxBytes    uint64
	prevTxBytes    uint64
	prevRxPackets  uint64
	prevTxPackets  uint64
	prevNetworkTime time.Time
}

// NewCollector returns a Collector that reports disk usage for diskPath
// (e.g. "/").
func NewCollector(diskPath string) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{
		diskPath:     diskPath,
		firstCPU:     true,
		firstDiskIO:  true,
		firstNetwork: true,
	}
}

// Collect gathers one Sample from /proc and the target filesystem.
func (c *Collector) Collect() (Sample, error) {
	s := Sample{Timestamp: time.Now()}

	if err := c.collectCPU(&s); err != nil {
		return s, fmt.Errorf("metrics: cpu: %w", err)
	}
	if err := c.collectMemory(&s); err != nil {
		return s, fmt.Errorf("metrics: memory: %w", err)
	}
	if err := c.collectDiskUsage(&s); err != nil {
		return s, fmt.Errorf("metrics: disk usage: %w", err)
	}
	if err := c.collectDiskIO(&s); err != nil {
		return s, fmt.Errorf("metrics: disk io: %w", err)
	}
	if err := c.collectNetwork(&s); err != nil {
		return s, fmt.Errorf("metrics: network: %w", err)
	}

	return s, nil
}

func (c *Collector) collectCPU(s *Sample) error {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return fmt.Errorf("empty /proc/stat")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return fmt.Errorf("unexpected /proc/stat format: %q", scanner.Text())
	}

	vals := make([]uint64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			break
		}
		vals = append(vals, n)
	}
	if len(vals) < 4 {
		return fmt.Errorf("too few cpu fields in /proc/stat")
	}

	user, nice, system, idle := vals[0], vals[1], vals[2], vals[3]
	var iowait, irq, softirq, steal uint64
	if len(vals) > 4 {
		iowait = vals[4]
	}
	if len(vals) > 5 {
		irq = vals[5]
	}
	if len(vals) > 6 {
		softirq = vals[6]
	}
	if len(vals) > 7 {
		steal = vals[7]
	}

	totalUser := user + nice
	totalSystem := system + irq + softirq
	totalIdle := idle + iowait
	total := totalUser + totalSystem + totalIdle + steal

	if !c.firstCPU {
		deltaTotal := float64(total - c.prevTotal)
		if deltaTotal > 0 {
			s.CPUUser = 100 * float64(totalUser-c.prevUser) / deltaTotal
			s.CPUSystem = 100 * float64(totalSystem-c.prevSystem) / deltaTotal
			s.CPUIdle = 100 * float64(totalIdle-c.prevIdle) / deltaTotal
			s.CPUPercent = 100 - s.CPUIdle
		}
	}

	c.firstCPU = false
	c.prevUser, c.prevSystem, c.prevIdle, c.prevTotal = totalUser, totalSystem, totalIdle, total
	return nil
}

func (c *Collector) collectMemory(s *Sample) error {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return err
	}
	defer f.Close()

	fieldsKB := map[string]uint64{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := line[:colon]
		rest := strings.Fields(strings.TrimSpace(line[colon+1:]))
		if len(rest) == 0 {
			continue
		}
		n, err := strconv.ParseUint(rest[0], 10, 64)
		if err != nil {
			continue
		}
		fieldsKB[key] = n
	}

	total := fieldsKB["MemTotal"] * 1024
	free := fieldsKB["MemAvailable"] * 1024
	if free == 0 {
		free = fieldsKB["MemFree"] * 1024
	}
	used := uint64(0)
	if total > free {
		used = total - free
	}

	s.MemoryTotal = total
	s.MemoryFree = free
	s.MemoryUsed = used
	if total > 0 {
		s.MemoryPercent = 100 * float64(used) / float64(total)
	}
	return nil
}

func (c *Collector) collectDiskUsage(s *Sample) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(c.diskPath, &stat); err != nil {
		return err
	}

	blockSize := uint64(stat.Bsize)
	total := stat.Blocks * blockSize
	free := stat.Bfree * blockSize
	used := uint64(0)
	if total > free {
		used = total - free
	}

	s.DiskTotal = total
	s.DiskFree = free
	s.DiskUsed = used
	if total > 0 {
		s.DiskPercent = 100 * float64(used) / float64(total)
	}
	return nil
}

func (c *Collector) collectDiskIO(s *Sample) error {
	f, err := os.Open("/proc/diskstats")
	if err != nil {
		return err
	}
	defer f.Close()

	var reads, writes, sectorsRead, sectorsWritten uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}
		name := fields[2]
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") {
			continue
		}
		r, _ := strconv.ParseUint(fields[3], 10, 64)
		rs, _ := strconv.ParseUint(fields[5], 10, 64)
		w, _ := strconv.ParseUint(fields[7], 10, 64)
		ws, _ := strconv.ParseUint(fields[9], 10, 64)
		reads += r
		writes += w
		sectorsRead += rs
		sectorsWritten += ws
	}

	const sectorSize = 512
	dataRead := sectorsRead * sectorSize
	dataWritten := sectorsWritten * sectorSize

	now := time.Now()
	if !c.firstDiskIO {
		elapsed := now.Sub(c.prevDiskIOTime).Seconds()
		if elapsed > 0 {
			s.DiskReadRate = float64(reads-c.prevDiskReads) / elapsed
			s.DiskWriteRate = float64(writes-c.prevDiskWrites) / elapsed
			s.DiskDataReadRate = float64(dataRead-c.prevDiskRead) / elapsed
			s.DiskDataWriteRate = float64(dataWritten-c.prevDiskWrite) / elapsed
		}
	}

	s.DiskReads = reads
	s.DiskWrites = writes
	s.DiskDataRead = dataRead
	s.DiskDataWritten = dataWritten

	c.firstDiskIO = false
	c.prevDiskReads, c.prevDiskWrites = reads, writes
	c.prevDiskRead, c.prevDiskWrite = dataRead, dataWritten
	c.prevDiskIOTime = now
	return nil
}

func (c *Collector) collectNetwork(s *Sample) error {
	f, err := os.Open("/proc/net/dev")
	if err != nil {
		return err
	}
	defer f.Close()

	var rxBytes, txBytes, rxPackets, txPackets uint64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= 2 {
			continue // two header lines
		}
		line := scanner.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		iface := strings.TrimSpace(line[:colon])
		if iface == "lo" {
			continue
		}
		fields := strings.Fields(line[colon+1:])
		if len(fields) < 9 {
			continue
		}
		rb, _ := strconv.ParseUint(fields[0], 10, 64)
		rp, _ := strconv.ParseUint(fields[1], 10, 64)
		tb, _ := strconv.ParseUint(fields[8], 10, 64)
		tp, _ := strconv.ParseUint(fields[9], 10, 64)
		rxBytes += rb
		rxPackets += rp
		txBytes += tb
		txPackets += tp
	}

	now := time.Now()
	if !c.firstNetwork {
		elapsed := now.Sub(c.prevNetworkTime).Seconds()
		if elapsed > 0 {
			s.NetworkRxRate = float64(rxBytes-c.prevRxBytes) / elapsed
			s.NetworkTxRate = float64(txBytes-c.prevTxBytes) / elapsed
		}
	}

	s.NetworkRxBytes = rxBytes
	s.NetworkTxBytes = txBytes
	s.NetworkRxPackets = rxPackets
	s.NetworkTxPackets = txPackets

	c.firstNetwork = false
	c.prevRxBytes, c.prevTxBytes = rxBytes, txBytes
	c.prevRxPackets, c.prevTxPackets = rxPackets, txPackets
	c.prevNetworkTime = now
	return nil
}
