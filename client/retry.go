package client

import (
	"context"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/atcodec"
)

// SendRetry sends cmd up to cmd.Defaults().Attempts times, applying
// spec.md §4.4's retry policy: a Timeout is always retried; a Parse error
// is retried only if the command opted in via ReattemptOnParseErr; every
// other error surfaces immediately. If every attempt times out, the error
// returned is Timeout.
func (c *Client[U]) SendRetry(ctx context.Context, cmd atcodec.Command) (Response, error) {
	defaults := cmd.Defaults()
	attempts := defaults.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.Send(ctx, cmd)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		atErr, ok := err.(*at.Error)
		if !ok {
			return Response{}, err
		}
		switch atErr.Kind {
		case at.KindTimeout:
			continue
		case at.KindParse:
			if defaults.ReattemptOnParseErr {
				continue
			}
			return Response{}, err
		default:
			return Response{}, err
		}
	}
	return Response{}, lastErr
}
