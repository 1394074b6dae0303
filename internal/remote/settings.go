package remote

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	alias         string
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSettings parses [user@]host[:port] and fills in anything missing
// from the ssh config file at configPath.
func resolveSettings(host, configPath string) *sshSettings {
	settings := &sshSettings{
		alias: host,
		port:  "22",
		user:  currentUser(),
	}

	explicitUser := false
	if user, rest, ok := strings.Cut(host, "@"); ok {
		settings.user = user
		host = rest
		explicitUser = true
	}

	if i := strings.LastIndex(host, ":"); i != -1 && isDigits(host[i+1:]) {
		settings.port = host[i+1:]
		host = host[:i]
	}
	settings.hostname = host
	settings.alias = host

	content, err := readSSHConfig(configPath)
	if err != nil {
		return settings
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return settings
	}

	if hostname, _ := cfg.Get(host, "HostName"); hostname != "" {
		settings.hostname = hostname
	}
	if port, _ := cfg.Get(host, "Port"); port != "" {
		settings.port = port
	}
	if user, _ := cfg.Get(host, "User"); user != "" && !explicitUser {
		settings.user = user
	}
	if identity, _ := cfg.Get(host, "IdentityFile"); identity != "" {
		settings.identityFile = expandPath(identity)
	}
	return settings
}

// readSSHConfig returns the config up to the first Match block, which
// ssh_config cannot decode.
func readSSHConfig(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			lines = lines[:i]
			break
		}
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
