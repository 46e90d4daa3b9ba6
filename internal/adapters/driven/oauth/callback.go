package oauth

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

// readTimeout bounds how long a connected browser may take to send its request.
const readTimeout = 10 * time.Second

// CallbackListener receives a single OAuth redirect on a raw TCP listener.
// The first connection is answered with an HTML page and then both the
// connection and the listener are closed.
type CallbackListener struct {
	ln        net.Listener
	closeOnce sync.Once
	closeErr  error
}

// ListenForCallback binds addr. It fails with ErrPortInUse if the address
// cannot be bound.
func ListenForCallback(addr string) (*CallbackListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, newAuthenticationError(ErrPortInUse, err)
	}
	logger.Debug("listening for OAuth callback on %s", ln.Addr())
	return &CallbackListener{ln: ln}, nil
}

// Addr returns the bound address.
func (l *CallbackListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close stops listening. Safe to call more than once.
func (l *CallbackListener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.ln.Close()
	})
	return l.closeErr
}

// Wait accepts one connection and extracts the authorization code from its
// request line. Cancelling ctx closes the listener and returns ctx.Err().
func (l *CallbackListener) Wait(ctx context.Context) (*domain.AuthorizationCallback, error) {
	defer l.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-done:
		}
	}()

	conn, err := l.ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newAuthenticationError(ErrCallbackFailed, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(readTimeout))

	reader := bufio.NewReader(conn)
	requestLine, err := reader.ReadString('\n')
	if err != nil && requestLine == "" {
		return nil, newAuthenticationError(ErrCallbackFailed, err)
	}
	drainHeaders(reader)

	callback, parseErr := ParseCallbackRequestLine(requestLine)
	if err := writePage(conn, parseErr); err != nil {
		logger.Warn("failed to write callback response: %v", err)
	}

	return callback, parseErr
}

// drainHeaders consumes the rest of the request head so closing the
// connection does not reset it before the browser reads the page.
func drainHeaders(r *bufio.Reader) {
	for {
		line, err := r.ReadString('\n')
		if err != nil || strings.TrimRight(line, "\r\n") == "" {
			return
		}
	}
}

// ParseCallbackRequestLine extracts the code and state from a request line
// such as "GET /auth/redirect?code=abc HTTP/1.1". A provider error in the
// query wins over a code.
func ParseCallbackRequestLine(line string) (*domain.AuthorizationCallback, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return nil, ErrMalformedRequest
	}

	path := parts[1]
	idx := strings.IndexByte(path, '?')
	if idx < 0 {
		return nil, ErrNoQueryString
	}

	// ParseQuery keeps the pairs it could decode, so one bad pair only
	// matters when neither code nor error survived.
	query, err := url.ParseQuery(path[idx+1:])
	if err != nil && query.Get("code") == "" && query.Get("error") == "" {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	if code := query.Get("error"); code != "" {
		return nil, &AuthorizationError{
			Code:        code,
			Description: query.Get("error_description"),
		}
	}

	code := query.Get("code")
	if code == "" {
		return nil, ErrNoAuthorizationCode
	}

	return &domain.AuthorizationCallback{
		Code:  code,
		State: query.Get("state"),
	}, nil
}

const (
	successPage = `<html><body><h1>Authorization successful!</h1>` +
		`<p>You can close this window and return to the terminal.</p></body></html>`
	failurePage = `<html><body><h1>Authorization failed</h1>` +
		`<p>%s</p><p>Return to the terminal for details.</p></body></html>`
)

func writePage(conn net.Conn, callbackErr error) error {
	body := successPage
	if callbackErr != nil {
		body = fmt.Sprintf(failurePage, html.EscapeString(callbackErr.Error()))
	}

	resp := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		fmt.Sprintf("Content-Length: %d\r\n", len(body)) +
		"Connection: close\r\n\r\n" + body
	_, err := conn.Write([]byte(resp))
	return err
}
