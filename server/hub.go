package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"rod/model"
	"rod/solver"
)

// pushEvery is the step interval between intermediate profile frames.
const pushEvery = 25

// Hub owns one websocket connection and the solver driven through it.
type Hub struct {
	conn *websocket.Conn
	// request
	msg chan model.Msg
	// response
	envSet  chan model.Msg
	started chan model.Msg
	stopped chan model.Msg
	failed  chan model.Msg

	done chan struct{} // closed by the server when the connection goes away

	// s, stop and marching are touched by both goroutines; mu keeps the
	// request handler from swapping the solver under a running march and
	// from closing the stop channel twice.
	mu       sync.Mutex
	s        *solver.Solver
	stop     chan struct{}
	marching bool
}

func NewHub() *Hub {
	return &Hub{
		msg:     make(chan model.Msg, 10),
		envSet:  make(chan model.Msg, 10),
		started: make(chan model.Msg, 10),
		stopped: make(chan model.Msg, 10),
		failed:  make(chan model.Msg, 10),
		done:    make(chan struct{}),
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case <-h.done:
			return
		case msg := <-h.msg:
			switch msg.Type {
			case "env":
				h.handleEnv(msg)
			case "start":
				h.handleStart()
			case "stop":
				h.handleStop()
			default:
				log.Warn("no such type: ", msg.Type)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (h *Hub) handleEnv(msg model.Msg) {
	var env model.Env
	err := json.Unmarshal([]byte(msg.Content), &env)
	var s *solver.Solver
	if err == nil {
		s, err = newSolver(env)
	}
	if err != nil {
		log.Warn("env rejected: ", err)
		h.failed <- model.Msg{Type: "failed", Content: err.Error()}
		return
	}
	h.mu.Lock()
	if h.marching {
		h.mu.Unlock()
		h.failed <- model.Msg{Type: "failed", Content: "march in progress"}
		return
	}
	h.s = s
	h.mu.Unlock()
	h.envSet <- model.Msg{Type: "envSet", Content: "env is set"}
}

func (h *Hub) handleStart() {
	h.mu.Lock()
	if h.s == nil {
		h.mu.Unlock()
		h.failed <- model.Msg{Type: "failed", Content: "env is not set"}
		return
	}
	if h.marching {
		h.mu.Unlock()
		h.failed <- model.Msg{Type: "failed", Content: "march in progress"}
		return
	}
	h.stop = make(chan struct{})
	h.marching = true
	h.mu.Unlock()
	h.started <- model.Msg{Type: "started"}
}

// handleStop closes the stop channel at most once; repeated stop messages
// and stops with no march in flight reply "stopped" without touching it.
func (h *Hub) handleStop() {
	h.mu.Lock()
	if h.marching && h.stop != nil {
		close(h.stop)
		h.stop = nil
	}
	h.mu.Unlock()
	h.stopped <- model.Msg{Type: "stopped", Content: "stopped"}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case <-h.done:
			return
		case reply := <-h.envSet:
			h.write(reply)
		case reply := <-h.started:
			h.write(reply)
			h.march()
		case reply := <-h.stopped:
			h.write(reply)
		case reply := <-h.failed:
			h.write(reply)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// march advances the solver to completion, pushing a profile frame every
// pushEvery steps and one final frame. A stop message aborts between steps,
// as does the connection going away. While marching is set the request
// handler rejects env and start, so s is never swapped underneath the loop.
func (h *Hub) march() {
	h.mu.Lock()
	s, stop := h.s, h.stop
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.marching = false
		h.mu.Unlock()
	}()
	if stop == nil { // stopped before the first step
		return
	}
	for !s.Done() {
		select {
		case <-stop:
			log.Info("march stopped at step ", s.Step())
			return
		case <-h.done:
			return
		default:
		}
		if err := s.Advance(); err != nil {
			log.Warn("march failed: ", err)
			h.write(model.Msg{Type: "failed", Content: err.Error()})
			return
		}
		if s.Step()%pushEvery == 0 {
			h.pushProfile()
		}
	}
	h.pushProfile()
	h.write(model.Msg{Type: "finished"})
}

func (h *Hub) pushProfile() {
	data, err := json.Marshal(h.buildProfile())
	if err != nil {
		log.Warn("marshal profile: ", err)
		return
	}
	h.write(model.Msg{Type: "profile", Content: string(data)})
}

func (h *Hub) buildProfile() model.ProfileData {
	return model.ProfileData{
		X:           h.s.Coordinates(),
		Temperature: h.s.CurrentField(),
		Step:        h.s.Step(),
		Steps:       h.s.Steps(),
	}
}

func (h *Hub) write(reply model.Msg) {
	err := h.conn.WriteJSON(&reply)
	if err != nil {
		log.Warn("write failed: ", err)
	}
}

func newSolver(env model.Env) (*solver.Solver, error) {
	cfg := solver.Config{
		N1:      env.N1,
		N2:      env.N2,
		L:       env.L,
		TEnd:    env.TEnd,
		Tau:     env.Tau,
		Lambda1: env.Lambda1,
		Lambda2: env.Lambda2,
		Rho1:    env.Rho1,
		Rho2:    env.Rho2,
		C1:      env.C1,
		C2:      env.C2,
		T0:      env.T0,
		Tl:      env.Tl,
		Tr:      env.Tr,
	}
	if env.Policy == "flux" {
		cfg.Policy = solver.FluxContinuity
	}
	return solver.NewSolver(cfg)
}
