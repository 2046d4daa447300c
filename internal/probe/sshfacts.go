package probe

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHConfig carries the credentials used to log in to switch CLIs. Either a
// password or a PEM private key must be set; the key wins when both are.
type SSHConfig struct {
	Username   string
	Password   string
	PrivateKey string
	Passphrase string
	Port       int
	Timeout    time.Duration
}

// SwitchProber gathers facts from a switch CLI over SSH. It is optional
// enrichment on top of controller telemetry; probe failures are surfaced to
// the caller and never fail a discovery cycle.
type SwitchProber struct {
	cfg SSHConfig
}

// NewSwitchProber creates a prober. Returns an error when the credentials
// cannot drive any auth method.
func NewSwitchProber(cfg SSHConfig) (*SwitchProber, error) {
	if cfg.Username == "" {
		return nil, fmt.Errorf("ssh probe: username required")
	}
	if cfg.Password == "" && cfg.PrivateKey == "" {
		return nil, fmt.Errorf("ssh probe: password or private key required")
	}
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SwitchProber{cfg: cfg}, nil
}

// factCommand is one CLI command plus the parser that turns its output into
// normalized fact keys.
type factCommand struct {
	name    string
	command string
	parser  func(output string) map[string]string
}

var factCommands = []factCommand{
	{
		name:    "system_status",
		command: "get system status",
		parser:  parseSystemStatus,
	},
	{
		name:    "version",
		command: "show version",
		parser:  parseShowVersion,
	},
}

// SwitchFacts connects to ip and runs the fact commands, merging their
// parsed results. A command that fails or parses to nothing is skipped;
// facts from earlier commands win on key collisions.
func (p *SwitchProber) SwitchFacts(ctx context.Context, ip string) (map[string]string, error) {
	client, err := p.connect(ctx, ip)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	facts := make(map[string]string)
	for _, fc := range factCommands {
		output, err := p.runCommand(client, fc.command)
		if err != nil {
			log.Printf("Fact command %s failed on %s: %v", fc.name, ip, err)
			continue
		}
		for k, v := range fc.parser(output) {
			if _, seen := facts[k]; !seen {
				facts[k] = v
			}
		}
	}
	if len(facts) == 0 {
		return nil, fmt.Errorf("ssh probe: no facts gathered from %s", ip)
	}
	return facts, nil
}

func (p *SwitchProber) connect(ctx context.Context, host string) (*ssh.Client, error) {
	config, err := p.clientConfig()
	if err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", host, p.cfg.Port)
	dialer := &net.Dialer{Timeout: p.cfg.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (p *SwitchProber) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod

	if p.cfg.PrivateKey != "" {
		var signer ssh.Signer
		var err error
		if p.cfg.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(p.cfg.PrivateKey), []byte(p.cfg.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey([]byte(p.cfg.PrivateKey))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	} else {
		auth = append(auth, ssh.Password(p.cfg.Password))
	}

	return &ssh.ClientConfig{
		User: p.cfg.Username,
		Auth: auth,
		// Switch host keys rotate on factory reset and are not pinned.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         p.cfg.Timeout,
	}, nil
}

func (p *SwitchProber) runCommand(client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	done := make(chan error, 1)
	var output []byte
	go func() {
		var runErr error
		output, runErr = session.CombinedOutput(cmd)
		done <- runErr
	}()

	select {
	case err := <-done:
		if err != nil {
			// Switch CLIs exit non-zero for unknown subcommands but still
			// print usable output.
			if _, ok := err.(*ssh.ExitError); ok {
				return string(output), nil
			}
			return "", fmt.Errorf("command failed: %w", err)
		}
		return string(output), nil
	case <-time.After(p.cfg.Timeout):
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timeout")
	}
}

// parseSystemStatus parses "get system status" output.
// Format: "Key: value" lines, e.g.
//
//	Version: S124EF v7.4.1,build0860,240315
//	Serial-Number: S124EF1234567890
//	Hostname: core-sw
func parseSystemStatus(output string) map[string]string {
	facts := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if value == "" {
			continue
		}
		switch key {
		case "Version":
			if model, version := splitVersionLine(value); version != "" {
				facts["os_version"] = version
				if model != "" {
					facts["model"] = model
				}
			}
		case "Serial-Number":
			facts["serial"] = value
		case "Hostname":
			facts["hostname"] = value
		case "BIOS version":
			facts["bios_version"] = value
		}
	}
	return facts
}

// parseShowVersion parses "show version" output from CLIs that have no
// "get system status". Only the first "Version ..." line is used.
func parseShowVersion(output string) map[string]string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Version") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "Version"))
		value = strings.TrimPrefix(value, ":")
		if model, version := splitVersionLine(strings.TrimSpace(value)); version != "" {
			facts := map[string]string{"os_version": version}
			if model != "" {
				facts["model"] = model
			}
			return facts
		}
	}
	return nil
}

// splitVersionLine breaks "S124EF v7.4.1,build0860,240315" into the model
// token and the bare version. The version is the first token starting with
// 'v' followed by a digit; build metadata after the first comma is dropped.
func splitVersionLine(s string) (model, version string) {
	for _, field := range strings.Fields(s) {
		field = strings.TrimSuffix(field, ",")
		if idx := strings.Index(field, ","); idx >= 0 {
			field = field[:idx]
		}
		if len(field) >= 2 && field[0] == 'v' && field[1] >= '0' && field[1] <= '9' {
			version = strings.TrimPrefix(field, "v")
			continue
		}
		if model == "" && version == "" {
			model = field
		}
	}
	if version == "" {
		return "", ""
	}
	return model, version
}
