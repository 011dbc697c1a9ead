package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	for _, tt := range []struct {
		input string
		want  bool
		asked int
	}{
		{"y\n", true, 1},
		{"YES\n", true, 1},
		{"n\n", false, 1},
		{"maybe\n  no \n", false, 2},
		{"", false, 1},
	} {
		var out bytes.Buffer
		p := New(strings.NewReader(tt.input), &out)

		ok, err := p.Confirm(context.Background(), "play again?")
		require.NoError(t, err, tt.input)
		require.Equal(t, tt.want, ok, tt.input)
		require.Equal(t, tt.asked, strings.Count(out.String(), "play again? (y/n)"), tt.input)
	}
}

func TestConfirmCancelled(t *testing.T) {
	in, _ := io.Pipe()
	p := New(in, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Confirm(ctx, "play again?")
	require.ErrorIs(t, err, context.Canceled)
}

func TestContinue(t *testing.T) {
	p := New(strings.NewReader("\n"), io.Discard)
	require.NoError(t, p.Continue(context.Background()))
}
