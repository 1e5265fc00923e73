/*
Package config describes the connection configuration of an Evrmore node
client: the RPC endpoint, credentials and the ZMQ notification endpoint.
Credentials can be given explicitly, embedded into the URL or resolved from
a node data directory (evrmore.conf or the .cookie file written by a running
node).
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version is the version of the library, set during the official build.
var Version = "dev"

const (
	// MainnetRPCPort is the default RPC port of a mainnet Evrmore node.
	MainnetRPCPort = 8819
	// TestnetRPCPort is the default RPC port of a testnet Evrmore node.
	TestnetRPCPort = 18819
	// DefaultZMQPort is the default port of the node's ZMQ publisher.
	DefaultZMQPort = 28332

	// DefaultTimeout is the default request timeout in seconds.
	DefaultTimeout = 30

	cookieFileName = ".cookie"
	confFileName   = "evrmore.conf"
)

// Credential resolution errors.
var (
	ErrMissingCredentials = errors.New("missing RPC credentials")
	ErrInvalidEndpoint    = errors.New("invalid RPC endpoint")
)

type (
	// Config is the complete connection configuration of a client. It is
	// treated as immutable once a client is constructed from it.
	Config struct {
		// URL is the full RPC endpoint URL, it takes precedence over
		// Host/Port and may carry credentials in its userinfo part.
		URL string `yaml:"URL"`
		// Host of the RPC endpoint, 127.0.0.1 by default.
		Host string `yaml:"Host"`
		// Port of the RPC endpoint, network default when zero.
		Port int `yaml:"Port"`

		RPCUser     string `yaml:"RPCUser"`
		RPCPassword string `yaml:"RPCPassword"`
		// CookieFile overrides the datadir-derived cookie file location.
		CookieFile string `yaml:"CookieFile"`
		// Datadir is the node data directory used for evrmore.conf and
		// cookie lookups, ~/.evrmore when empty.
		Datadir string `yaml:"Datadir"`
		Testnet bool   `yaml:"Testnet"`

		// Timeout is the request timeout in seconds.
		Timeout int `yaml:"Timeout"`
		// Mode selects the call dispatch mode: auto, sync or async.
		Mode string `yaml:"Mode"`

		ZMQ ZMQ `yaml:"ZMQ"`
	}

	// ZMQ describes the node's ZMQ notification endpoint.
	ZMQ struct {
		Host string `yaml:"Host"`
		Port int    `yaml:"Port"`
		// Topics to subscribe to, all known topics when empty.
		Topics []string `yaml:"Topics"`
	}
)

// Load attempts to load the config from the given path and returns an error
// if anything goes wrong.
func Load(path string) (Config, error) {
	config := Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, fmt.Errorf("config '%s' doesn't exist", path)
	}
	configData, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("unable to read config: %w", err)
	}
	err = yaml.Unmarshal(configData, &config)
	if err != nil {
		return config, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	return config, nil
}

// Endpoint composes the RPC endpoint URL of the configured node. When no URL
// is given explicitly, an http URL is built from Host/Port with defaults
// depending on the Testnet flag.
func (c Config) Endpoint() (*url.URL, error) {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEndpoint, err)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return nil, fmt.Errorf("%w: unsupported scheme '%s'", ErrInvalidEndpoint, u.Scheme)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("%w: no host in '%s'", ErrInvalidEndpoint, c.URL)
		}
		return u, nil
	}
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		if p, err := c.confValue("rpcport"); err == nil {
			port, _ = strconv.Atoi(p)
		}
	}
	if port == 0 {
		if c.Testnet {
			port = TestnetRPCPort
		} else {
			port = MainnetRPCPort
		}
	}
	return &url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", host, port)}, nil
}

// Credentials resolves the RPC username/password pair. The resolution order
// is: URL userinfo, explicit RPCUser/RPCPassword, rpcuser/rpcpassword from
// evrmore.conf, the node cookie file. ErrMissingCredentials is returned when
// none of the sources yields a pair.
func (c Config) Credentials() (string, string, error) {
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err == nil && u.User != nil {
			pass, _ := u.User.Password()
			return u.User.Username(), pass, nil
		}
	}
	if c.RPCUser != "" {
		return c.RPCUser, c.RPCPassword, nil
	}
	user, uErr := c.confValue("rpcuser")
	pass, pErr := c.confValue("rpcpassword")
	if uErr == nil && pErr == nil && user != "" {
		return user, pass, nil
	}
	if user, pass, err := readCookie(c.cookiePath()); err == nil {
		return user, pass, nil
	}
	return "", "", ErrMissingCredentials
}

// ZMQEndpoint composes the tcp endpoint of the node's ZMQ publisher.
func (c Config) ZMQEndpoint() string {
	host := c.ZMQ.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.ZMQ.Port
	if port == 0 {
		port = DefaultZMQPort
	}
	return fmt.Sprintf("tcp://%s:%d", host, port)
}

// RequestTimeout returns the configured request timeout in seconds, falling
// back to DefaultTimeout.
func (c Config) RequestTimeout() int {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) datadir() string {
	if c.Datadir != "" {
		return c.Datadir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".evrmore")
}

func (c Config) cookiePath() string {
	if c.CookieFile != "" {
		return c.CookieFile
	}
	dir := c.datadir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, cookieFileName)
}

// confValue reads a single key from the node's evrmore.conf.
func (c Config) confValue(key string) (string, error) {
	dir := c.datadir()
	if dir == "" {
		return "", os.ErrNotExist
	}
	values, err := readConf(filepath.Join(dir, confFileName))
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found", key)
	}
	return v, nil
}

// readConf parses a bitcoin-style key=value configuration file. Section
// headers and unparseable lines are skipped.
func readConf(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "[") {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return values, nil
}

// readCookie parses the user:password cookie file written by a running node.
func readCookie(path string) (string, string, error) {
	if path == "" {
		return "", "", os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	user, pass, found := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !found {
		return "", "", fmt.Errorf("malformed cookie file '%s'", path)
	}
	return user, pass, nil
}
