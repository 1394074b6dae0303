package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rileyhilliard/beamtop/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHRunner runs commands on the node's host over one SSH connection.
type SSHRunner struct {
	host      string
	client    *ssh.Client
	agentConn net.Conn
}

// SSHOptions tunes DialSSH. Zero values pick ~/.ssh defaults.
type SSHOptions struct {
	Timeout        time.Duration
	ConfigPath     string
	KnownHostsPath string
	// Insecure skips host key verification.
	Insecure bool
}

func (o SSHOptions) withDefaults() SSHOptions {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.ConfigPath == "" {
		o.ConfigPath = filepath.Join(homeDir(), ".ssh", "config")
	}
	if o.KnownHostsPath == "" {
		o.KnownHostsPath = filepath.Join(homeDir(), ".ssh", "known_hosts")
	}
	return o
}

// DialSSH connects to host, which may be an ssh config alias, a hostname,
// user@host or host:port.
func DialSSH(ctx context.Context, host string, opts SSHOptions) (*SSHRunner, error) {
	opts = opts.withDefaults()
	settings := resolveSettings(host, opts.ConfigPath)

	agentConn, agentAuth := sshAgentAuth()
	config, err := buildClientConfig(settings, agentAuth, opts)
	if err != nil {
		closeQuietly(agentConn)
		var beamErr *errors.Error
		if stderrors.As(err, &beamErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := settings.address()
	dialer := net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		closeQuietly(agentConn)
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		closeQuietly(agentConn)
		var mismatch *HostKeyMismatchError
		if stderrors.As(err, &mismatch) {
			return nil, errors.New(errors.ErrSSH, mismatch.Error(), mismatch.Suggestion())
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			suggestionForHandshakeError(err, settings.encryptedKeys))
	}

	return &SSHRunner{
		host:      host,
		client:    ssh.NewClient(sshConn, chans, reqs),
		agentConn: agentConn,
	}, nil
}

// Run starts argv in a remote shell and streams its stdout. Cancelling ctx
// sends SIGTERM and closes the session.
func (r *SSHRunner) Run(ctx context.Context, argv []string, stdout io.Writer) error {
	if len(argv) == 0 {
		return errors.New(errors.ErrExec, "Nothing to run", "")
	}

	session, err := r.client.NewSession()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't open an SSH session on '%s'", r.host),
			"The connection may have dropped. Try again.")
	}
	defer session.Close()

	stderr := newTailBuffer(stderrTailBytes)
	session.Stdout = stdout
	session.Stderr = stderr

	if err := session.Start(ShellQuote(argv)); err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't start %s on '%s'", argv[0], r.host), "")
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		_ = session.Close()
		<-done
		return ctx.Err()
	case err := <-done:
		return sessionError(err, argv[0], r.host, stderr.String())
	}
}

func sessionError(err error, command, host, stderr string) error {
	if err == nil {
		return nil
	}
	var exitErr *ssh.ExitError
	if stderrors.As(err, &exitErr) {
		suggestion := stderr
		if exitErr.ExitStatus() == 127 {
			suggestion = fmt.Sprintf("%s isn't on the PATH of '%s'. Set --erl to its full path.", command, host)
		}
		return errors.WrapWithCode(errors.NewExitError(exitErr.ExitStatus()), errors.ErrExec,
			fmt.Sprintf("%s on '%s' exited with code %d", command, host, exitErr.ExitStatus()),
			suggestion)
	}
	return errors.WrapWithCode(err, errors.ErrSSH,
		fmt.Sprintf("Lost the SSH session to '%s'", host), stderr)
}

// Describe implements Runner.
func (r *SSHRunner) Describe() string {
	return r.host
}

// Close closes the SSH connection and the agent socket.
func (r *SSHRunner) Close() error {
	closeQuietly(r.agentConn)
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// buildClientConfig collects auth methods and the host key callback. It
// records encrypted keys in settings for error suggestions.
func buildClientConfig(settings *sshSettings, agentAuth ssh.AuthMethod, opts SSHOptions) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod
	if agentAuth != nil {
		authMethods = append(authMethods, agentAuth)
	}

	tryKeyFile := func(keyPath string) {
		keyAuth, err := keyFileAuth(keyPath)
		if err != nil {
			var encErr *EncryptedKeyError
			if stderrors.As(err, &encErr) {
				settings.encryptedKeys = append(settings.encryptedKeys, keyPath)
			}
			return
		}
		authMethods = append(authMethods, keyAuth)
	}

	if settings.identityFile != "" {
		tryKeyFile(settings.identityFile)
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir(), ".ssh", name)
		if keyPath != settings.identityFile {
			tryKeyFile(keyPath)
		}
	}

	if len(authMethods) == 0 {
		if len(settings.encryptedKeys) > 0 {
			return nil, errors.New(errors.ErrSSH,
				fmt.Sprintf("Found SSH key(s) but they're encrypted: %s", strings.Join(settings.encryptedKeys, ", ")),
				addKeysSuggestion(settings.encryptedKeys))
		}
		return nil, errors.New(errors.ErrSSH, "No SSH auth methods available",
			"Check your keys are loaded: ssh-add -l")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // explicitly requested
	if !opts.Insecure {
		var err error
		hostKeyCallback, err = createHostKeyCallback(opts.KnownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            settings.user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         opts.Timeout,
	}, nil
}

// sshAgentAuth returns the agent connection and an auth method backed by it,
// or nils when no agent with keys is available.
func sshAgentAuth() (net.Conn, ssh.AuthMethod) {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil, nil
	}
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, nil
	}
	client := agent.NewClient(conn)

	// An empty agent ahead of key files makes servers give up early.
	signers, err := client.Signers()
	if err != nil || len(signers) == 0 {
		conn.Close()
		return nil, nil
	}
	return conn, ssh.PublicKeysCallback(client.Signers)
}

// keyFileAuth returns an auth method for a private key file, or
// EncryptedKeyError when it needs a passphrase.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || bytes.Contains(key, []byte("ENCRYPTED")) {
			return nil, &EncryptedKeyError{Path: keyPath}
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError is returned when known_hosts has a different key.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns the commands that fix the mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	wantTypes := make([]string, 0, len(e.Want))
	for _, k := range e.Want {
		wantTypes = append(wantTypes, k.Key.Type())
	}
	want := "unknown"
	if len(wantTypes) > 0 {
		want = strings.Join(wantTypes, ", ")
	}
	return fmt.Sprintf(
		"The server's host key doesn't match what's in known_hosts.\n"+
			"  Known types: %s\n"+
			"  Server sent: %s\n\n"+
			"  If the host was rebuilt, remove the old entry:\n"+
			"    ssh-keygen -R %s",
		want, e.ReceivedType, host)
}

func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   knownHostsPath,
				Want:         keyErr.Want,
			}
		}
		return err
	}, nil
}

func addKeysSuggestion(keys []string) string {
	var sb strings.Builder
	sb.WriteString("Add your key(s) to the agent:\n")
	for _, key := range keys {
		if runtime.GOOS == "darwin" {
			fmt.Fprintf(&sb, "  ssh-add --apple-use-keychain %s\n", key)
		} else {
			fmt.Fprintf(&sb, "  ssh-add %s\n", key)
		}
	}
	sb.WriteString("\nNot sure which key? Check with: ssh -v <host>")
	return sb.String()
}

func suggestionForDialError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Is SSH running on that box? Try: ssh <host>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the host. Check your network connection."
	case strings.Contains(msg, "timeout"):
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		if len(encryptedKeys) > 0 {
			return addKeysSuggestion(encryptedKeys)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(msg, "host key"):
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}
