package serverinfo

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/honeybadger-loader/internal/dto"
)

// Stats reads memory and load figures from procfs. Fields stay zero on
// platforms without /proc.
func (c *Collector) Stats() dto.Stats {
	var stats dto.Stats

	if mem, err := c.readMeminfo(); err == nil {
		stats.Mem = mem
	} else {
		c.logger.Debug("Memory stats unavailable", zap.Error(err))
	}

	if load, err := c.readLoadavg(); err == nil {
		stats.Load = load
	} else {
		c.logger.Debug("Load stats unavailable", zap.Error(err))
	}
	return stats
}

// readMeminfo parses /proc/meminfo. Values there are in kB.
func (c *Collector) readMeminfo() (dto.Memory, error) {
	f, err := os.Open(filepath.Join(c.procRoot, "meminfo"))
	if err != nil {
		return dto.Memory{}, err
	}
	defer f.Close()

	kb := make(map[string]float64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
			kb[key] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return dto.Memory{}, err
	}

	toMB := func(key string) float64 { return kb[key] / 1024 }
	mem := dto.Memory{
		Total:   toMB("MemTotal"),
		Free:    toMB("MemFree"),
		Buffers: toMB("Buffers"),
		Cached:  toMB("Cached"),
	}
	mem.FreeTotal = mem.Free + mem.Buffers + mem.Cached
	return mem, nil
}

// readLoadavg parses the first three fields of /proc/loadavg.
func (c *Collector) readLoadavg() (dto.Load, error) {
	raw, err := os.ReadFile(filepath.Join(c.procRoot, "loadavg"))
	if err != nil {
		return dto.Load{}, err
	}

	fields := strings.Fields(string(raw))
	if len(fields) < 3 {
		return dto.Load{}, strconv.ErrSyntax
	}

	var vals [3]float64
	for i := range vals {
		if vals[i], err = strconv.ParseFloat(fields[i], 64); err != nil {
			return dto.Load{}, err
		}
	}
	return dto.Load{One: vals[0], Five: vals[1], Fifteen: vals[2]}, nil
}
