package query

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"math/rand"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	queryTypeHandshake   = 0x09
	queryTypeInformation = 0x00
)

var (
	querySplitNum  = [...]byte{'S', 'P', 'L', 'I', 'T', 'N', 'U', 'M', 0x00}
	queryPlayerKey = [...]byte{0x00, 0x01, 'p', 'l', 'a', 'y', 'e', 'r', '_', 0x00, 0x00}
	queryVersion   = [...]byte{0xfe, 0xfd}
)

// tokenLifetime is how long a handshake token may be used for an information
// request.
const tokenLifetime = 30 * time.Second

// Config holds the settings of a Listener.
type Config struct {
	// Log is used for debug output of failed writes. If nil, slog.Default()
	// is used.
	Log *slog.Logger
	// Provider supplies the data sent to clients. If nil, only defaults are
	// reported.
	Provider ProviderFunc
}

// Listener answers query requests received on a UDP socket.
type Listener struct {
	conn     net.PacketConn
	log      *slog.Logger
	provider ProviderFunc
	host     string
	port     int

	mu     sync.Mutex
	tokens map[string]token
	rng    *rand.Rand
}

type token struct {
	value  int32
	expiry time.Time
}

// Listen opens a UDP socket on address and returns a Listener for it. Serve
// must be called to start answering requests.
func (conf Config) Listen(address string) (*Listener, error) {
	conn, err := net.ListenPacket("udp", address)
	if err != nil {
		return nil, err
	}
	return conf.newListener(conn), nil
}

func (conf Config) newListener(conn net.PacketConn) *Listener {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	l := &Listener{conn: conn, log: conf.Log.With("subsystem", "query"), provider: conf.Provider}
	if local, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		if local.IP != nil && !local.IP.IsUnspecified() {
			l.host = local.IP.String()
		}
		l.port = local.Port
	}
	l.host = canonicalHost(l.host)
	return l
}

// Addr returns the address the Listener is bound to.
func (l *Listener) Addr() net.Addr { return l.conn.LocalAddr() }

// Close closes the socket, making Serve return.
func (l *Listener) Close() error { return l.conn.Close() }

// Serve answers query requests until the Listener is closed. Datagrams that
// are not query requests are dropped. Serve returns nil once the socket was
// closed.
func (l *Listener) Serve() error {
	buf := make([]byte, 2048)
	for {
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if !l.handle(buf[:n], addr) {
			l.log.Debug("Dropped datagram that is not a query.", "raddr", addr.String(), "len", n)
		}
	}
}

// handle recognises and processes a query request. It reports false if b is
// not a query request.
func (l *Listener) handle(b []byte, addr net.Addr) bool {
	if len(b) < 7 || b[0] != queryVersion[0] || b[1] != queryVersion[1] {
		return false
	}
	reqType := b[2]
	sequence := int32(binary.BigEndian.Uint32(b[3:7]))
	switch reqType {
	case queryTypeHandshake:
		l.writeHandshake(addr, sequence, l.newToken(addr.String()))
		return true
	case queryTypeInformation:
		if len(b) <= 7 {
			return true
		}
		value, ok := parseTokenValue(b[7:])
		if !ok || !l.validateToken(addr.String(), value) {
			return true
		}
		l.writeInfo(addr, sequence)
		return true
	default:
		return false
	}
}

// newToken issues a temporary token for addr. The token guards against
// amplification attacks.
func (l *Listener) newToken(addr string) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.tokens == nil {
		l.tokens = make(map[string]token)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := time.Now()
	for a, t := range l.tokens {
		if now.After(t.expiry) {
			delete(l.tokens, a)
		}
	}
	value := l.rng.Int31()
	l.tokens[addr] = token{value: value, expiry: now.Add(tokenLifetime)}
	return value
}

// validateToken checks whether a previously issued token is still valid for
// addr.
func (l *Listener) validateToken(addr string, value int32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.tokens[addr]
	if !ok || time.Now().After(t.expiry) || t.value != value {
		delete(l.tokens, addr)
		return false
	}
	return true
}

func (l *Listener) writeHandshake(addr net.Addr, sequence, token int32) {
	buf := bytes.NewBuffer(make([]byte, 0, 1+4+12))
	buf.WriteByte(queryTypeHandshake)
	_ = binary.Write(buf, binary.BigEndian, sequence)

	tokenStr := strconv.FormatInt(int64(token), 10)
	if len(tokenStr) > 12 {
		tokenStr = tokenStr[:12]
	}
	buf.WriteString(tokenStr)
	if padding := 12 - len(tokenStr); padding > 0 {
		buf.Write(make([]byte, padding))
	}
	if _, err := l.conn.WriteTo(buf.Bytes(), addr); err != nil {
		l.log.Debug("Query handshake write failed.", "err", err, "raddr", addr.String())
	}
}

func (l *Listener) writeInfo(addr net.Addr, sequence int32) {
	data := l.data()

	buf := bytes.NewBuffer(make([]byte, 0, 256))
	buf.WriteByte(queryTypeInformation)
	_ = binary.Write(buf, binary.BigEndian, sequence)
	buf.Write(querySplitNum[:])
	buf.WriteByte(0x80)
	buf.WriteByte(0x00)

	for _, kv := range data.keyValues() {
		buf.WriteString(kv.key)
		buf.WriteByte(0x00)
		buf.WriteString(kv.value)
		buf.WriteByte(0x00)
	}
	buf.WriteByte(0x00)
	buf.Write(queryPlayerKey[:])
	for _, name := range data.Viewers {
		buf.WriteString(name)
		buf.WriteByte(0x00)
	}
	buf.WriteByte(0x00)

	if _, err := l.conn.WriteTo(buf.Bytes(), addr); err != nil {
		l.log.Debug("Query info write failed.", "err", err, "raddr", addr.String())
	}
}

// data returns the data reported for the current request.
func (l *Listener) data() Data {
	var d Data
	if l.provider != nil {
		d = l.provider()
	}
	d.HostIP, d.HostPort = l.host, l.port
	d.applyDefaults()
	return d
}

func parseTokenValue(payload []byte) (int32, bool) {
	trimmed := payload
	if len(trimmed) >= 4 {
		if i := bytes.Index(trimmed, []byte{0xff, 0xff, 0xff, 0x01}); i >= 0 {
			trimmed = trimmed[:i]
		}
	}
	trimmed = bytes.TrimRight(trimmed, "\x00")
	if len(trimmed) > 0 {
		if value, err := strconv.ParseInt(string(trimmed), 10, 32); err == nil {
			return int32(value), true
		}
	}
	if len(payload) >= 4 {
		return int32(binary.BigEndian.Uint32(payload[:4])), true
	}
	return 0, false
}
