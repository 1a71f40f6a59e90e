package testutil

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedis is an in-memory RESP2 server covering the commands the lock store sends.
type MockRedis struct {
	mu         sync.Mutex
	data       map[string]mockValue
	shouldFail bool
}

type mockValue struct {
	value     string
	expiresAt time.Time
}

func (v mockValue) expired(now time.Time) bool {
	return !v.expiresAt.IsZero() && now.After(v.expiresAt)
}

func NewMockRedis() *MockRedis {
	return &MockRedis{data: make(map[string]mockValue)}
}

// NewMockRedisClient returns a go-redis client wired to a fresh MockRedis.
func NewMockRedisClient() (*redis.Client, *MockRedis) {
	mock := NewMockRedis()
	client := redis.NewClient(&redis.Options{
		Addr:   "mock",
		Dialer: mock.dialer,
	})
	return client, mock
}

// SetShouldFail makes every following command reply with an error.
func (m *MockRedis) SetShouldFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
}

// Get returns the raw value stored under key.
func (m *MockRedis) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok || v.expired(time.Now()) {
		return "", false
	}
	return v.value, true
}

// TTL returns the remaining time to live of key, zero when it has none.
func (m *MockRedis) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok || v.expiresAt.IsZero() {
		return 0
	}
	return time.Until(v.expiresAt)
}

func (m *MockRedis) dialer(_ context.Context, _, _ string) (net.Conn, error) {
	clientConn, serverConn := net.Pipe()
	go m.serveConn(serverConn)
	return clientConn, nil
}

func (m *MockRedis) serveConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	for {
		args, err := readCommand(reader)
		if err != nil {
			return
		}
		if err := m.handleCommand(args, writer); err != nil {
			_ = writer.Flush()
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}
}

func (m *MockRedis) handleCommand(args []string, w *bufio.Writer) error {
	if len(args) == 0 {
		return writeError(w, "ERR empty command")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shouldFail {
		return writeError(w, "ERR mock redis failure")
	}

	switch strings.ToUpper(args[0]) {
	case "PING":
		return writeSimpleString(w, "PONG")
	case "SET":
		return m.handleSet(args, w)
	case "GET":
		return m.handleGet(args, w)
	case "DEL":
		return m.handleDel(args, w)
	case "EVAL":
		return m.handleEval(args, w)
	case "FLUSHDB":
		m.data = make(map[string]mockValue)
		return writeSimpleString(w, "OK")
	default:
		return writeError(w, fmt.Sprintf("ERR unknown command '%s'", args[0]))
	}
}

// SET key value [EX seconds|PX milliseconds] [NX]
func (m *MockRedis) handleSet(args []string, w *bufio.Writer) error {
	if len(args) < 3 {
		return writeError(w, "ERR wrong number of arguments for 'set' command")
	}

	key, value := args[1], args[2]
	var ttl time.Duration
	nx := false
	for i := 3; i < len(args); i++ {
		switch strings.ToUpper(args[i]) {
		case "EX", "PX":
			if i+1 >= len(args) {
				return writeError(w, "ERR syntax error")
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return writeError(w, "ERR value is not an integer or out of range")
			}
			if strings.ToUpper(args[i]) == "EX" {
				ttl = time.Duration(n) * time.Second
			} else {
				ttl = time.Duration(n) * time.Millisecond
			}
			i++
		case "NX":
			nx = true
		}
	}

	now := time.Now()
	if existing, ok := m.data[key]; ok && existing.expired(now) {
		delete(m.data, key)
	}
	if _, exists := m.data[key]; exists && nx {
		return writeNil(w)
	}

	v := mockValue{value: value}
	if ttl > 0 {
		v.expiresAt = now.Add(ttl)
	}
	m.data[key] = v
	return writeSimpleString(w, "OK")
}

func (m *MockRedis) handleGet(args []string, w *bufio.Writer) error {
	if len(args) != 2 {
		return writeError(w, "ERR wrong number of arguments for 'get' command")
	}
	v, ok := m.data[args[1]]
	if !ok {
		return writeNil(w)
	}
	if v.expired(time.Now()) {
		delete(m.data, args[1])
		return writeNil(w)
	}
	return writeBulkString(w, v.value)
}

func (m *MockRedis) handleDel(args []string, w *bufio.Writer) error {
	if len(args) < 2 {
		return writeError(w, "ERR wrong number of arguments for 'del' command")
	}
	var count int64
	for _, key := range args[1:] {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			count++
		}
	}
	return writeInt(w, count)
}

// EVAL script numkeys key [key ...] arg [arg ...]
// Only the compare-holder-and-delete script is understood.
func (m *MockRedis) handleEval(args []string, w *bufio.Writer) error {
	if len(args) < 3 {
		return writeError(w, "ERR wrong number of arguments for 'eval' command")
	}
	script := args[1]
	numKeys, err := strconv.Atoi(args[2])
	if err != nil || numKeys != 1 || len(args) < 5 {
		return writeError(w, "ERR invalid eval arguments")
	}
	key, holder := args[3], args[4]

	if !strings.Contains(script, "cjson.decode") || !strings.Contains(script, "del") {
		return writeError(w, "ERR unsupported script")
	}

	v, ok := m.data[key]
	if !ok || v.expired(time.Now()) {
		return writeInt(w, 0)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(v.value), &record); err != nil {
		return writeError(w, "ERR Error running script: cjson decode failed")
	}
	email, _ := record["user_email"].(string)
	if !strings.EqualFold(email, holder) {
		return writeInt(w, 0)
	}
	delete(m.data, key)
	return writeInt(w, 1)
}

func readCommand(r *bufio.Reader) ([]string, error) {
	prefix, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if prefix != '*' {
		return nil, errors.New("unexpected RESP prefix")
	}

	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(line)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, count)
	for range count {
		bulkPrefix, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if bulkPrefix != '$' {
			return nil, errors.New("unexpected bulk prefix")
		}
		lenLine, err := readLine(r)
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(lenLine)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

func writeSimpleString(w *bufio.Writer, msg string) error {
	_, err := w.WriteString("+" + msg + "\r\n")
	return err
}

func writeError(w *bufio.Writer, msg string) error {
	_, err := w.WriteString("-" + msg + "\r\n")
	return err
}

func writeInt(w *bufio.Writer, value int64) error {
	_, err := w.WriteString(":" + strconv.FormatInt(value, 10) + "\r\n")
	return err
}

func writeBulkString(w *bufio.Writer, value string) error {
	_, err := w.WriteString("$" + strconv.Itoa(len(value)) + "\r\n" + value + "\r\n")
	return err
}

func writeNil(w *bufio.Writer) error {
	_, err := w.WriteString("$-1\r\n")
	return err
}
