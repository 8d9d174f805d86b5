package tool

import (
	"bytes"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/merlit/dnswire/internal/dnsmsg"
	domainmatcher "github.com/merlit/dnswire/internal/domain_matcher"
	"github.com/merlit/dnswire/internal/mlog"
	"github.com/merlit/dnswire/internal/netlist"
	"github.com/merlit/dnswire/internal/rrdata"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen  ListenConfig   `yaml:"listen"`
	Records []RecordConfig `yaml:"records"`

	Limiter LimiterConfig `yaml:"limiter"`
	Block   BlockConfig   `yaml:"block"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ListenConfig struct {
	Addr        string `yaml:"addr"`
	UdpSize     int    `yaml:"udp_size"`
	IdleTimeout int    `yaml:"idle_timeout"` // tcp, seconds

	// Reply from the addr the query landed on. Useful if the server
	// listens on an any addr. Linux only.
	MultiRoutes bool `yaml:"multi_routes"`

	// Expect a proxy protocol v2 header on every tcp connection.
	ProxyProtocol bool `yaml:"proxy_protocol"`

	// Client cidr whitelist. Empty list allows all clients.
	Allow []string `yaml:"allow"`
}

type LimiterConfig struct {
	Qps   float64 `yaml:"qps"` // per client, <=0 disables the limiter
	Burst int     `yaml:"burst"`
}

type BlockConfig struct {
	Rules []string `yaml:"rules"`
	Files []string `yaml:"files"`
}

type RecordConfig struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	TTL   uint32 `yaml:"ttl"`
	Value string `yaml:"value"`
}

type LogConfig struct {
	Queries bool `yaml:"queries"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// parseConfig decodes yaml strictly. Unknown keys are errors so typos in
// config files fail loud instead of being ignored.
func parseConfig(b []byte) (*Config, error) {
	cfg := new(Config)
	m := make(map[string]any)
	if err := yaml.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("failed to decode yaml config, %w", err)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		TagName:     "yaml",
		Result:      cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init yaml decoder, %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to decode yaml struct, %w", err)
	}
	return cfg, nil
}

func setDefaultGZ[T constraints.Float | constraints.Integer](i *T, s, d T) {
	if s > 0 {
		*i = s
	} else {
		*i = d
	}
}

// parseRecordValue builds the payload of a static zone record from its
// presentation value. Only the common lookup types are supported.
func parseRecordValue(typ, value string) (dnsmsg.Rdata, error) {
	switch strings.ToUpper(typ) {
	case "A":
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("invalid address [%s], %w", value, err)
		}
		if !addr.Unmap().Is4() {
			return nil, fmt.Errorf("not an ipv4 address [%s]", value)
		}
		return &rrdata.A{Addr: addr}, nil
	case "AAAA":
		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("invalid address [%s], %w", value, err)
		}
		return &rrdata.AAAA{Addr: addr}, nil
	case "CNAME":
		n, err := dnsmsg.ParseName(value)
		if err != nil {
			return nil, err
		}
		return &rrdata.CNAME{Target: n}, nil
	case "NS":
		n, err := dnsmsg.ParseName(value)
		if err != nil {
			return nil, err
		}
		return &rrdata.NS{Host: n}, nil
	case "PTR":
		n, err := dnsmsg.ParseName(value)
		if err != nil {
			return nil, err
		}
		return &rrdata.PTR{Target: n}, nil
	case "TXT":
		return &rrdata.TXT{Text: []string{value}}, nil
	case "MX":
		fields := strings.Fields(value)
		if len(fields) != 2 {
			return nil, fmt.Errorf("mx value must be \"preference exchange\", got [%s]", value)
		}
		pref, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid mx preference [%s], %w", fields[0], err)
		}
		n, err := dnsmsg.ParseName(fields[1])
		if err != nil {
			return nil, err
		}
		return &rrdata.MX{Preference: uint16(pref), Exchange: n}, nil
	default:
		return nil, fmt.Errorf("unsupported record type [%s]", typ)
	}
}

// zoneKey identifies one answer set. Names are folded to lower case so
// lookups are case insensitive.
type zoneKey struct {
	name string
	typ  dnsmsg.Type
}

// buildZone turns the configured records into a lookup table keyed by
// owner name and type.
func buildZone(records []RecordConfig) (map[zoneKey][]*dnsmsg.Resource, error) {
	zone := make(map[zoneKey][]*dnsmsg.Resource)
	for i, rc := range records {
		name, err := dnsmsg.ParseName(rc.Name)
		if err != nil {
			return nil, fmt.Errorf("record #%d has invalid name, %w", i, err)
		}
		data, err := parseRecordValue(rc.Type, rc.Value)
		if err != nil {
			return nil, fmt.Errorf("record #%d has invalid value, %w", i, err)
		}
		ttl := rc.TTL
		if ttl == 0 {
			ttl = 300
		}
		rr := dnsmsg.NewResource(name, ttl, data)
		k := zoneKey{name: name.ToLower().String(), typ: rr.Type()}
		zone[k] = append(zone[k], rr)
	}
	return zone, nil
}

// buildACL parses cidr prefixes into a lookup list. Empty input returns
// a nil list, which allows every client.
func buildACL(prefixes []string) (*netlist.List[struct{}], error) {
	if len(prefixes) == 0 {
		return nil, nil
	}
	b := netlist.NewBuilder[struct{}](len(prefixes))
	for _, s := range prefixes {
		p, err := netip.ParsePrefix(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid cidr [%s], %w", s, err)
		}
		b.AddPrefix(p, struct{}{})
	}
	return b.Build()
}

// buildBlocklist loads block rules from the config and from rule files.
// Returns a nil matcher if no rule was given.
func buildBlocklist(cfg BlockConfig) (*domainmatcher.MixMatcher, error) {
	if len(cfg.Rules) == 0 && len(cfg.Files) == 0 {
		return nil, nil
	}
	m := domainmatcher.NewMixMatcher()
	for i, rule := range cfg.Rules {
		if err := m.Add(rule); err != nil {
			return nil, fmt.Errorf("invalid block rule #%d, %w", i, err)
		}
	}
	for _, path := range cfg.Files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open block rule file, %w", err)
		}
		err = domainmatcher.LoadMixMatcherFromReader(m, f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load block rule file [%s], %w", path, err)
		}
	}
	return m, nil
}

func genConfigTemplate(o string) {
	logger := mlog.L()
	cfg := &Config{
		Records: []RecordConfig{{}},
	}

	b := new(bytes.Buffer)
	encoder := yaml.NewEncoder(b)
	encoder.SetIndent(2)

	err := encoder.Encode(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode config")
	}
	encoder.Close()

	if len(o) == 0 || o == "stdout" {
		fmt.Printf("%s\n", b.Bytes())
	} else {
		err := os.WriteFile(o, b.Bytes(), 0644)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to write config file")
		}
	}
}
