package buffers_test

import (
	"context"
	"io"
	"testing"
	"time"

	"i4.energy/across/atmodem/at"
	"i4.energy/across/atmodem/atcodec"
	"i4.energy/across/atmodem/buffers"
	"i4.energy/across/atmodem/client"
)

type pipeTransport struct {
	*io.PipeReader
	*io.PipeWriter
}

func (p pipeTransport) Close() error {
	_ = p.PipeReader.Close()
	return p.PipeWriter.Close()
}

func decodeURC(raw []byte) (string, error) { return string(raw), nil }

type atCmd struct{}

func (atCmd) AtCommand() string          { return "AT" }
func (atCmd) Defaults() atcodec.Defaults { return atcodec.DefaultDefaults() }

func TestSessionRoundTripsACommandOverAPipe(t *testing.T) {
	clientSide, modemSide := io.Pipe()
	readSide, writeSide := io.Pipe()

	tr := pipeTransport{PipeReader: readSide, PipeWriter: modemSide}

	cfg, err := client.NewConfigBuilder(
		client.WithCooldown(0),
		client.WithResponseTimeout(300*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}

	sess := buffers.New[string](tr, cfg, at.DefaultGrammar(), nil, decodeURC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	// Simulate the modem side: read the command line, reply with OK.
	go func() {
		buf := make([]byte, 64)
		n, _ := clientSide.Read(buf)
		_ = n
		_, _ = writeSide.Write([]byte("AT\r\r\nOK\r\n"))
	}()

	resp, err := sess.Client.Send(ctx, atCmd{})
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Body) != "" {
		t.Fatalf("got body %q, want empty", resp.Body)
	}

	cancel()
	<-done
}
