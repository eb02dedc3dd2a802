package status

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type MemInfo struct {
	TotalKiB     uint64
	AvailableKiB uint64
}

func (m MemInfo) Used() uint64 {
	if m.AvailableKiB > m.TotalKiB {
		return 0
	}
	return m.TotalKiB - m.AvailableKiB
}

type BatteryInfo struct {
	Capacity int
	Status   string
}

// Sensors samples OS counters. Fields left nil fall back to the Linux
// implementations.
type Sensors struct {
	Memory  func() (MemInfo, error)
	Battery func(name string) (BatteryInfo, error)
}

func (s Sensors) withDefaults() Sensors {
	if s.Memory == nil {
		s.Memory = ReadMemInfo
	}
	if s.Battery == nil {
		s.Battery = ReadBattery
	}
	return s
}

// ReadMemInfo parses /proc/meminfo.
func ReadMemInfo() (MemInfo, error) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return MemInfo{}, err
	}
	return parseMemInfo(data)
}

func parseMemInfo(data []byte) (MemInfo, error) {
	var m MemInfo
	var haveTotal, haveAvail bool
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			m.TotalKiB, haveTotal = v, true
		case "MemAvailable:":
			m.AvailableKiB, haveAvail = v, true
		}
	}
	if !haveTotal || !haveAvail {
		return MemInfo{}, fmt.Errorf("meminfo: missing MemTotal or MemAvailable")
	}
	return m, nil
}

const powerSupplyDir = "/sys/class/power_supply"

// ReadBattery reads capacity and status of a power supply. An empty name
// picks the first BAT* supply.
func ReadBattery(name string) (BatteryInfo, error) {
	return readBattery(powerSupplyDir, name)
}

func readBattery(dir, name string) (BatteryInfo, error) {
	if name == "" {
		matches, err := filepath.Glob(filepath.Join(dir, "BAT*"))
		if err != nil {
			return BatteryInfo{}, err
		}
		if len(matches) == 0 {
			return BatteryInfo{}, fmt.Errorf("no battery found")
		}
		name = filepath.Base(matches[0])
	}

	capacity, err := os.ReadFile(filepath.Join(dir, name, "capacity"))
	if err != nil {
		return BatteryInfo{}, err
	}
	c, err := strconv.Atoi(strings.TrimSpace(string(capacity)))
	if err != nil {
		return BatteryInfo{}, fmt.Errorf("battery capacity: %w", err)
	}

	status, err := os.ReadFile(filepath.Join(dir, name, "status"))
	if err != nil {
		return BatteryInfo{}, err
	}

	return BatteryInfo{
		Capacity: c,
		Status:   strings.TrimSpace(string(status)),
	}, nil
}
