package podctl

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// followEvents tails the daemon's SSE stream, reconnecting with
// exponential backoff when the connection drops. It returns only when
// ctx is canceled.
func followEvents(ctx context.Context, base string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0

	op := func() error {
		err := streamOnce(ctx, base)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			// Stream ended cleanly, e.g. server restart. Reconnect.
			err = fmt.Errorf("event stream closed")
		}
		fmt.Fprintf(os.Stderr, "disconnected: %v, reconnecting\n", err)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func streamOnce(ctx context.Context, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/api/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// No client timeout; the stream is expected to stay open.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from event stream", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			fmt.Println(data)
		}
	}
	return sc.Err()
}
