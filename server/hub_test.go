package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rod/model"
	"rod/solver"
)

func scenarioEnv() model.Env {
	return model.Env{
		N1: 50, N2: 50,
		L: 0.4, TEnd: 800, Tau: 2,
		Lambda1: 46, Lambda2: 384,
		Rho1: 7800, Rho2: 8800,
		C1: 460, C2: 381,
		T0: 283, Tl: 373, Tr: 323,
		Policy: "flux",
	}
}

func envMsg(t *testing.T, env model.Env) model.Msg {
	t.Helper()
	content, err := json.Marshal(env)
	require.NoError(t, err)
	return model.Msg{Type: "env", Content: string(content)}
}

func awaitMsg(t *testing.T, c chan model.Msg) model.Msg {
	t.Helper()
	select {
	case msg := <-c:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no reply")
		return model.Msg{}
	}
}

func (h *Hub) solverForTest() *solver.Solver {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.s
}

func TestHubEnvMessage(t *testing.T) {
	h := NewHub()
	go h.handleRequest()

	h.msg <- envMsg(t, scenarioEnv())
	reply := awaitMsg(t, h.envSet)
	assert.Equal(t, "envSet", reply.Type)
	s := h.solverForTest()
	require.NotNil(t, s)
	assert.Equal(t, 400, s.Steps())
}

func TestHubRejectsBadEnv(t *testing.T) {
	h := NewHub()
	go h.handleRequest()

	h.msg <- model.Msg{Type: "env", Content: "{not json"}
	reply := awaitMsg(t, h.failed)
	assert.Equal(t, "failed", reply.Type)

	env := scenarioEnv()
	env.Lambda1 = -1
	h.msg <- envMsg(t, env)
	reply = awaitMsg(t, h.failed)
	assert.Equal(t, "failed", reply.Type)
	assert.Nil(t, h.solverForTest())
}

func TestHubStartWithoutEnv(t *testing.T) {
	h := NewHub()
	go h.handleRequest()

	h.msg <- model.Msg{Type: "start"}
	reply := awaitMsg(t, h.failed)
	assert.Equal(t, "failed", reply.Type)
}

func TestHubStartAndStop(t *testing.T) {
	h := NewHub()
	go h.handleRequest()

	h.msg <- envMsg(t, scenarioEnv())
	awaitMsg(t, h.envSet)

	h.msg <- model.Msg{Type: "start"}
	reply := awaitMsg(t, h.started)
	assert.Equal(t, "started", reply.Type)

	h.mu.Lock()
	stop := h.stop
	h.mu.Unlock()
	require.NotNil(t, stop)

	h.msg <- model.Msg{Type: "stop"}
	reply = awaitMsg(t, h.stopped)
	assert.Equal(t, "stopped", reply.Type)
	select {
	case <-stop:
	default:
		t.Fatal("stop channel not closed")
	}
	h.mu.Lock()
	assert.Nil(t, h.stop)
	h.mu.Unlock()
}

func TestHubRepeatedStop(t *testing.T) {
	// A client may repeat stop, and stop with no march in flight at all;
	// every one of them gets a "stopped" reply and none may close the stop
	// channel twice.
	h := NewHub()
	go h.handleRequest()

	h.msg <- model.Msg{Type: "stop"}
	assert.Equal(t, "stopped", awaitMsg(t, h.stopped).Type)

	h.msg <- envMsg(t, scenarioEnv())
	awaitMsg(t, h.envSet)
	h.msg <- model.Msg{Type: "start"}
	awaitMsg(t, h.started)

	for i := 0; i < 3; i++ {
		h.msg <- model.Msg{Type: "stop"}
		assert.Equal(t, "stopped", awaitMsg(t, h.stopped).Type, "stop %d", i+1)
	}
}

func TestHubRejectsEnvWhileMarching(t *testing.T) {
	h := NewHub()
	go h.handleRequest()

	h.msg <- envMsg(t, scenarioEnv())
	awaitMsg(t, h.envSet)
	// start flips marching; with no response goroutine running the march
	// never begins, so the flag stays set for the rest of the test.
	h.msg <- model.Msg{Type: "start"}
	awaitMsg(t, h.started)
	before := h.solverForTest()

	h.msg <- envMsg(t, scenarioEnv())
	reply := awaitMsg(t, h.failed)
	assert.Equal(t, "failed", reply.Type)
	assert.Equal(t, "march in progress", reply.Content)
	assert.Same(t, before, h.solverForTest())

	h.msg <- model.Msg{Type: "start"}
	reply = awaitMsg(t, h.failed)
	assert.Equal(t, "march in progress", reply.Content)

	// once the march winds down, env is accepted again
	h.mu.Lock()
	h.marching = false
	h.mu.Unlock()
	h.msg <- envMsg(t, scenarioEnv())
	assert.Equal(t, "envSet", awaitMsg(t, h.envSet).Type)
	assert.NotSame(t, before, h.solverForTest())
}

func TestHubGoroutinesExitWhenDone(t *testing.T) {
	h := NewHub()
	requestDone := make(chan struct{})
	responseDone := make(chan struct{})
	go func() {
		h.handleRequest()
		close(requestDone)
	}()
	go func() {
		h.handleResponse()
		close(responseDone)
	}()

	close(h.done)
	for name, c := range map[string]chan struct{}{"request": requestDone, "response": responseDone} {
		select {
		case <-c:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s handler did not exit", name)
		}
	}
}

func TestBuildProfile(t *testing.T) {
	s, err := newSolver(scenarioEnv())
	require.NoError(t, err)
	h := NewHub()
	h.s = s
	require.NoError(t, s.Advance())

	profile := h.buildProfile()
	assert.Len(t, profile.X, 100)
	assert.Len(t, profile.Temperature, 100)
	assert.Equal(t, 1, profile.Step)
	assert.Equal(t, 400, profile.Steps)
	assert.Equal(t, 373.0, profile.Temperature[0])
	assert.Equal(t, 323.0, profile.Temperature[99])
}

func TestNewSolverDefaultsToAveragedPolicy(t *testing.T) {
	env := scenarioEnv()
	env.Policy = ""
	s, err := newSolver(env)
	require.NoError(t, err)
	require.NotNil(t, s)
}
