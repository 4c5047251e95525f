package agent

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/portico-hosting/portico/models"
)

// cpuStat holds CPU statistics from /proc/stat
type cpuStat struct {
	user    uint64
	nice    uint64
	system  uint64
	idle    uint64
	iowait  uint64
	irq     uint64
	softirq uint64
	steal   uint64
}

// ReadSystemSnapshot collects the snapshot the daemon endpoint serves.
// Linux only; other platforms report zero usage rather than failing, so a
// probe against a dev box still counts as online.
func ReadSystemSnapshot() (*models.SystemSnapshot, error) {
	snapshot := &models.SystemSnapshot{
		Timestamp: time.Now(),
	}

	// CPU usage is sampled over a short window; a read failure leaves zero
	if cpuUsage, err := getCPUUsage(); err == nil {
		snapshot.CPUUsage = cpuUsage
	}

	memUsed, memTotal, err := getMemoryUsage()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory usage: %w", err)
	}
	snapshot.MemoryUsed = memUsed
	snapshot.MemoryTotal = memTotal
	if memTotal > 0 {
		snapshot.MemoryUsagePercent = float64(memUsed) / float64(memTotal) * 100
	}

	if uptime, err := getUptime(); err == nil {
		snapshot.UptimeSeconds = uptime
	}

	return snapshot, nil
}

// getCPUUsage calculates CPU usage percentage over a short sampling period.
// Returns a value between 0-100 representing the percentage of CPU time used.
func getCPUUsage() (float64, error) {
	if runtime.GOOS != "linux" {
		return 0, nil
	}

	// Read initial CPU stats
	stat1, err := readCPUStat()
	if err != nil {
		return 0, err
	}

	// Wait for a short period to measure usage
	time.Sleep(100 * time.Millisecond)

	// Read CPU stats again
	stat2, err := readCPUStat()
	if err != nil {
		return 0, err
	}

	// Calculate the difference
	idle := float64(stat2.idle - stat1.idle)
	total := float64((stat2.user + stat2.nice + stat2.system + stat2.idle + stat2.iowait + stat2.irq + stat2.softirq + stat2.steal) -
		(stat1.user + stat1.nice + stat1.system + stat1.idle + stat1.iowait + stat1.irq + stat1.softirq + stat1.steal))

	if total == 0 {
		return 0, nil
	}

	// CPU usage = (total - idle) / total * 100
	usage := (total - idle) / total * 100
	return usage, nil
}

// readCPUStat reads CPU statistics from /proc/stat
func readCPUStat() (*cpuStat, error) {
	file, err := os.Open("/proc/stat")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return nil, fmt.Errorf("failed to read /proc/stat")
	}

	line := scanner.Text()
	fields := strings.Fields(line)
	if len(fields) < 9 || fields[0] != "cpu" {
		return nil, fmt.Errorf("invalid /proc/stat format")
	}

	values := make([]uint64, 8)
	for i := 0; i < 8; i++ {
		values[i], err = strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CPU stat: %w", err)
		}
	}

	return &cpuStat{
		user:    values[0],
		nice:    values[1],
		system:  values[2],
		idle:    values[3],
		iowait:  values[4],
		irq:     values[5],
		softirq: values[6],
		steal:   values[7],
	}, nil
}

// getMemoryUsage reads memory usage from /proc/meminfo.
// Returns used memory in bytes and total memory in bytes.
func getMemoryUsage() (used int64, total int64, err error) {
	if runtime.GOOS != "linux" {
		return 0, 0, nil
	}

	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	var memTotal, memFree, buffers, cached int64

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		key := strings.TrimSuffix(fields[0], ":")
		value, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}

		// Values in /proc/meminfo are in kB, convert to bytes
		value *= 1024

		switch key {
		case "MemTotal":
			memTotal = value
		case "MemFree":
			memFree = value
		case "Buffers":
			buffers = value
		case "Cached":
			cached = value
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}

	// Used = Total - Free - Buffers - Cached, which tracks what the kernel
	// could not reclaim rather than what happens to be resident
	memUsed := memTotal - memFree - buffers - cached

	return memUsed, memTotal, nil
}

// getUptime reads the system uptime in whole seconds from /proc/uptime.
func getUptime() (int64, error) {
	if runtime.GOOS != "linux" {
		return 0, nil
	}

	data, err := os.ReadFile("/proc/uptime")
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty /proc/uptime")
	}

	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse /proc/uptime: %w", err)
	}
	return int64(seconds), nil
}
