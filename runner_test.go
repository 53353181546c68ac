package switchyard_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

func TestRunnerRequiresIO(t *testing.T) {
	eng := newEngine(t, &scriptedReasoner{})

	r := switchyard.NewRunner()
	err := r.Run(context.Background(), eng)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input reader")

	r.Input = strings.NewReader("")
	err = r.Run(context.Background(), eng)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output writer")
}

func TestRunnerHeadlessConversation(t *testing.T) {
	question := "Could you share your policy number?"
	reasoner := &scriptedReasoner{replies: append([]ports.Inference{ask(question)}, resolveVia("policy")...)}
	eng := newEngine(t, reasoner)

	out := &bytes.Buffer{}
	r := switchyard.NewRunner()
	r.Input = strings.NewReader("I need help with my policy\nIt's POL-000002\nexit\n")
	r.Output = out
	r.Headless = true

	require.NoError(t, r.Run(context.Background(), eng))
	assert.NotEmpty(t, r.SessionID)

	text := out.String()
	assert.Contains(t, text, question)
	assert.Contains(t, text, "POL000002")
	assert.NotContains(t, text, "Bye!")
}

func TestRunnerInteractiveChrome(t *testing.T) {
	eng := newEngine(t, &scriptedReasoner{replies: resolveVia("policy")})

	out := &bytes.Buffer{}
	r := switchyard.NewRunner()
	r.Input = strings.NewReader("exit\n")
	r.Output = out

	require.NoError(t, r.Run(context.Background(), eng))
	assert.Contains(t, out.String(), "Type a message")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunnerSkipsBlankLinesAndStopsOnEOF(t *testing.T) {
	reasoner := &scriptedReasoner{replies: resolveVia("policy")}
	eng := newEngine(t, reasoner)

	out := &bytes.Buffer{}
	r := switchyard.NewRunner()
	r.Input = strings.NewReader("\n   \nStatus of POL-000002?\n")
	r.Output = out
	r.Headless = true

	require.NoError(t, r.Run(context.Background(), eng))
	assert.Equal(t, 4, reasoner.callCount())
	assert.Contains(t, out.String(), "POL000002")
}

func TestRunnerReasonerOutageKeepsLooping(t *testing.T) {
	reasoner := &scriptedReasoner{}
	reasoner.fail(&domain.ExternalError{Service: "reasoner", Err: errors.New("down")})
	eng := newEngine(t, reasoner)

	out := &bytes.Buffer{}
	r := switchyard.NewRunner()
	r.Input = strings.NewReader("hello\nexit\n")
	r.Output = out
	r.Headless = true

	require.NoError(t, r.Run(context.Background(), eng))
	assert.Contains(t, out.String(), "unreachable right now")
}

func TestRunnerAppliesRenderer(t *testing.T) {
	eng := newEngine(t, &scriptedReasoner{replies: resolveVia("policy")})

	out := &bytes.Buffer{}
	r := switchyard.NewRunner()
	r.Input = strings.NewReader("Status of POL-000002?\n")
	r.Output = out
	r.Headless = true
	r.Renderer = func(s string) (string, error) {
		return ">> " + s, nil
	}

	require.NoError(t, r.Run(context.Background(), eng))
	assert.Contains(t, out.String(), ">> Policy POL000002")
}
