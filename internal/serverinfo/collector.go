// Package serverinfo gathers the server context attached to outbound error
// reports: hostname, process id, project root, timestamp and host stats.
package serverinfo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/honeybadger-loader/internal/config"
	"github.com/xkilldash9x/honeybadger-loader/internal/dto"
)

// Unknown is reported for values that could not be determined.
const Unknown = "unknown"

// TimeLayout renders UTC time at minute resolution with a literal Z.
const TimeLayout = "2006-01-02T15:04Z"

// dnsTimeout bounds the reverse lookup of the local hostname.
const dnsTimeout = 2 * time.Second

// Collector looks up server context. Every lookup degrades to a sentinel
// instead of failing.
type Collector struct {
	env    config.Provider
	logger *zap.Logger

	// Replaceable for tests.
	osHostname func() (string, error)
	lookupHost func(ctx context.Context, host string) ([]string, error)
	lookupAddr func(ctx context.Context, addr string) ([]string, error)
	getwd      func() (string, error)
	getpid     func() int
	now        func() time.Time
	procRoot   string
}

// NewCollector creates a collector reading environment variables through env.
func NewCollector(env config.Provider, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		env:        env,
		logger:     logger.Named("serverinfo"),
		osHostname: os.Hostname,
		lookupHost: net.DefaultResolver.LookupHost,
		lookupAddr: net.DefaultResolver.LookupAddr,
		getwd:      os.Getwd,
		getpid:     os.Getpid,
		now:        time.Now,
		procRoot:   "/proc",
	}
}

// Hostname returns the first non-empty of $HOSTNAME, $COMPUTERNAME and the
// reverse-DNS name of the local machine, or Unknown.
func (c *Collector) Hostname() string {
	for _, key := range []string{"HOSTNAME", "COMPUTERNAME"} {
		if host := c.getenv(key); host != "" {
			return host
		}
	}

	host, err := c.osHostname()
	if err == nil && host == "" {
		err = errors.New("empty hostname")
	}
	if err != nil {
		c.logger.Warn("Unable to find hostname", zap.Error(err), zap.String("fallback", Unknown))
		return Unknown
	}

	canonical, err := c.reverseLookup(host)
	if err != nil {
		c.logger.Warn("Unable to resolve hostname", zap.Error(err), zap.String("fallback", host))
		return host
	}
	return canonical
}

// reverseLookup resolves host to an address and returns the first name that
// address maps back to.
func (c *Collector) reverseLookup(host string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	addrs, err := c.lookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no addresses for %s", host)
	}
	names, err := c.lookupAddr(ctx, addrs[0])
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if name = strings.TrimSuffix(name, "."); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("no names for %s", addrs[0])
}

// ProjectRoot returns the absolute, symlink-free working directory, or Unknown.
func (c *Collector) ProjectRoot() string {
	wd, err := c.getwd()
	if err == nil {
		wd, err = filepath.Abs(wd)
	}
	if err == nil {
		wd, err = filepath.EvalSymlinks(wd)
	}
	if err != nil {
		c.logger.Warn("Can't get runtime root path", zap.Error(err), zap.String("fallback", Unknown))
		return Unknown
	}
	return wd
}

// RuntimeName identifies this process as "<pid>@<host>".
func (c *Collector) RuntimeName() string {
	return c.runtimeName(c.Hostname())
}

func (c *Collector) runtimeName(host string) string {
	return fmt.Sprintf("%d@%s", c.getpid(), host)
}

// PID returns the process id parsed from RuntimeName, or nil.
func (c *Collector) PID() *int {
	return ParsePID(c.RuntimeName())
}

// ParsePID extracts the process id from a "<pid>@<host>" identity. It returns
// nil when '@' is missing or leads the string, or the prefix is not an integer.
func ParsePID(identity string) *int {
	idx := strings.IndexByte(identity, '@')
	if idx < 1 {
		return nil
	}
	pid, err := strconv.Atoi(identity[:idx])
	if err != nil {
		return nil
	}
	return &pid
}

// Time returns the current UTC time in TimeLayout.
func (c *Collector) Time() string {
	return c.now().UTC().Format(TimeLayout)
}

// ServerDetails assembles a full snapshot for the given environment name.
func (c *Collector) ServerDetails(environmentName string) *dto.ServerDetails {
	host := c.Hostname()
	stats := c.Stats()
	return &dto.ServerDetails{
		EnvironmentName: environmentName,
		Hostname:        host,
		ProjectRoot:     c.ProjectRoot(),
		PID:             ParsePID(c.runtimeName(host)),
		Time:            c.Time(),
		Stats:           &stats,
	}
}

func (c *Collector) getenv(key string) string {
	if c.env == nil {
		return os.Getenv(key)
	}
	return c.env.Getenv(key)
}
