// Package schedsim is a discrete-event multi-core CPU scheduler simulator
// core. It is driven by an external collaborator that delivers events (job
// arrival, job completion, quantum expiration) in strict time order and
// queries the scheduler for core-placement decisions and end-of-run
// statistics.
//
// The package is single-threaded and cooperative: every handler runs to
// completion before the next event is delivered. There is no internal
// goroutine, no locking, and no cancellation: the event loop belongs to the
// caller.
package schedsim

import (
	"fmt"

	"github.com/go-foundations/schedsim/policy"
	"github.com/go-foundations/schedsim/queue"
)

// Config configures a Scheduler at start-up.
type Config struct {
	Cores  int
	Scheme policy.Scheme
	// Quantum is informational only: the core never counts time itself.
	// It exists so a driver reading Config back can know the quantum it
	// configured the simulation with.
	Quantum int
}

// DefaultConfig returns a single-core FCFS configuration.
func DefaultConfig() Config {
	return Config{Cores: 1, Scheme: policy.FCFS, Quantum: 0}
}

// Scheduler owns a fixed array of Core slots, one ready queue of waiting
// jobs, and the full roster of jobs ever admitted (kept for statistics).
//
// Lifecycle: constructed by New, initialized once by StartUp, torn down by
// CleanUp. No other method may be called before StartUp or after CleanUp.
type Scheduler struct {
	config  Config
	started bool

	cores []Core
	ready *queue.OrderedQueue[*Job]

	admitted []*Job
	seen     map[int]*Job
}

// New returns an uninitialized Scheduler. Call StartUp before using it.
func New() *Scheduler {
	return &Scheduler{}
}

// NewScheduler is a convenience constructor equivalent to calling New()
// followed by StartUp(cores, scheme).
func NewScheduler(cores int, scheme policy.Scheme) *Scheduler {
	s := New()
	s.StartUp(cores, scheme)
	return s
}

// NewSchedulerWithConfig is NewScheduler driven by a Config, defaulting any
// zero-value field to DefaultConfig's. Quantum is carried through for the
// caller to read back but plays no role in the core's own decisions.
func NewSchedulerWithConfig(cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.Cores == 0 {
		cfg.Cores = def.Cores
	}
	s := New()
	s.StartUp(cfg.Cores, cfg.Scheme)
	s.config.Quantum = cfg.Quantum
	return s
}

// StartUp allocates the core array (all idle), selects the comparator for
// scheme, and initializes the ready queue. It must be called exactly once,
// before any other operation.
func (s *Scheduler) StartUp(cores int, scheme policy.Scheme) {
	if s.started {
		panic("schedsim: StartUp called more than once")
	}
	if cores < 1 {
		panic("schedsim: cores must be >= 1")
	}

	pcmp := policy.ComparatorFor(scheme) // panics on an unknown scheme

	s.config = Config{Cores: cores, Scheme: scheme}
	s.cores = make([]Core, cores)
	for i := range s.cores {
		s.cores[i].CoreID = i
	}
	s.ready = queue.New[*Job](func(a, b *Job) int { return pcmp(a, b) })
	s.admitted = nil
	s.seen = make(map[int]*Job)
	s.started = true
}

func (s *Scheduler) requireStarted() {
	if !s.started {
		panic("schedsim: StartUp must be called before any other operation")
	}
}

func (s *Scheduler) requireValidCore(coreID int) *Core {
	if coreID < 0 || coreID >= len(s.cores) {
		panic(fmt.Sprintf("schedsim: invalid core id %d", coreID))
	}
	return &s.cores[coreID]
}

// idleCore returns the lowest core id with no job running, and false if all
// cores are busy.
func (s *Scheduler) idleCore() (int, bool) {
	for i := range s.cores {
		if s.cores[i].IsIdle() {
			return i, true
		}
	}
	return 0, false
}

// dispatch places job on core at the given time, setting first/last dispatch
// bookkeeping.
func (s *Scheduler) dispatch(core *Core, job *Job, time int) {
	core.Running = job
	if job.FirstDispatchTime == Unset {
		job.FirstDispatchTime = time
	}
	job.LastDispatchTime = time
}

// NewJob admits a job that arrives at time with the given running time and
// priority, and returns the core index it should run on immediately, or
// Unset if it was placed in the ready queue instead.
func (s *Scheduler) NewJob(jobID, time, runningTime, priority int) int {
	s.requireStarted()
	if runningTime < 1 {
		panic("schedsim: running_time must be >= 1")
	}
	if _, dup := s.seen[jobID]; dup {
		panic(fmt.Sprintf("schedsim: duplicate job id %d", jobID))
	}

	job := newJob(jobID, time, runningTime, priority)
	s.seen[jobID] = job
	s.admitted = append(s.admitted, job)

	if idx, ok := s.idleCore(); ok {
		s.dispatch(&s.cores[idx], job, time)
		return idx
	}

	switch s.config.Scheme {
	case policy.PSJF:
		return s.admitPreemptive(job, time, s.psjfVictim)
	case policy.PPRI:
		return s.admitPreemptive(job, time, s.ppriVictim)
	default: // FCFS, SJF, PRI, RR: non-preemptive
		s.ready.Offer(job)
		return Unset
	}
}

// admitPreemptive implements the shared shape of the PSJF and PPRI admission
// rules: find a victim among running jobs, and preempt it onto the ready
// queue if job is strictly more eligible.
func (s *Scheduler) admitPreemptive(job *Job, time int, victim func(time int) (int, bool)) int {
	coreIdx, ok := victim(time)
	if !ok {
		// No running job at all: unreachable once cores > 0 and at
		// least one job has arrived, but kept for safety.
		s.ready.Offer(job)
		return Unset
	}

	v := s.cores[coreIdx].Running
	if !s.preempts(job, v) {
		s.ready.Offer(job)
		return Unset
	}

	s.ready.Offer(v)
	v.LastDispatchTime = Unset
	s.dispatch(&s.cores[coreIdx], job, time)
	return coreIdx
}

func (s *Scheduler) preempts(candidate, running *Job) bool {
	if s.config.Scheme == policy.PPRI {
		return candidate.Priority < running.Priority
	}
	return candidate.RemainingTime < running.RemainingTime
}

// psjfVictim ticks every running job's remaining time forward to time, then
// returns the core index of the running job with the greatest updated
// remaining time, breaking ties by greatest arrival time.
func (s *Scheduler) psjfVictim(time int) (int, bool) {
	for i := range s.cores {
		c := &s.cores[i]
		if c.Running == nil {
			continue
		}
		c.Running.RemainingTime -= time - c.Running.LastDispatchTime
		c.Running.LastDispatchTime = time
	}

	best, found := -1, false
	for i := range s.cores {
		c := &s.cores[i]
		if c.Running == nil {
			continue
		}
		if !found {
			best, found = i, true
			continue
		}
		cand, cur := c.Running, s.cores[best].Running
		if cand.RemainingTime > cur.RemainingTime ||
			(cand.RemainingTime == cur.RemainingTime && cand.ArrivalTime > cur.ArrivalTime) {
			best = i
		}
	}
	return best, found
}

// ppriVictim returns the core index of the running job with the numerically
// largest (lowest-precedence) static priority, breaking ties by greatest
// arrival time. Static priority is never bumped.
func (s *Scheduler) ppriVictim(time int) (int, bool) {
	best, found := -1, false
	for i := range s.cores {
		c := &s.cores[i]
		if c.Running == nil {
			continue
		}
		if !found {
			best, found = i, true
			continue
		}
		cand, cur := c.Running, s.cores[best].Running
		if cand.Priority > cur.Priority ||
			(cand.Priority == cur.Priority && cand.ArrivalTime > cur.ArrivalTime) {
			best = i
		}
	}
	return best, found
}

// JobFinished records the completion of jobID on coreID at time, frees the
// core, and dispatches the head of the ready queue onto it if non-empty.
// Returns the dispatched job id, or Unset if the core goes idle.
func (s *Scheduler) JobFinished(coreID, jobID, time int) int {
	s.requireStarted()
	core := s.requireValidCore(coreID)

	if core.Running == nil || core.Running.JobID != jobID {
		panic(fmt.Sprintf("schedsim: job_finished(core=%d, job=%d): job not running on that core", coreID, jobID))
	}

	finished := core.Running
	finished.FinishTime = time
	finished.RemainingTime = 0
	core.Running = nil

	head, ok := s.ready.Poll()
	if !ok {
		return Unset
	}
	s.dispatch(core, head, time)
	return head.JobID
}

// QuantumExpired rotates the job running on coreID, valid only under RR.
// Returns the job id now running on coreID, or Unset if the core was
// already idle.
func (s *Scheduler) QuantumExpired(coreID, time int) int {
	s.requireStarted()
	if s.config.Scheme != policy.RR {
		panic("schedsim: quantum_expired is only valid under the RR scheme")
	}
	core := s.requireValidCore(coreID)

	if core.Running == nil {
		return Unset
	}

	running := core.Running
	running.RemainingTime -= time - running.LastDispatchTime
	running.LastDispatchTime = Unset
	core.Running = nil

	s.ready.Offer(running)
	head, _ := s.ready.Poll() // running was just offered: never empty
	s.dispatch(core, head, time)
	return head.JobID
}

// AverageWaitingTime returns the mean waiting time (turnaround minus original
// running time) over all finished jobs, or 0 if none have finished.
func (s *Scheduler) AverageWaitingTime() float64 {
	return s.average(func(j *Job) int { return j.waiting() })
}

// AverageTurnaroundTime returns the mean turnaround time (finish minus
// arrival) over all finished jobs, or 0 if none have finished.
func (s *Scheduler) AverageTurnaroundTime() float64 {
	return s.average(func(j *Job) int { return j.turnaround() })
}

// AverageResponseTime returns the mean response time (first dispatch minus
// arrival) over all finished jobs, or 0 if none have finished.
func (s *Scheduler) AverageResponseTime() float64 {
	return s.average(func(j *Job) int { return j.response() })
}

func (s *Scheduler) average(metric func(*Job) int) float64 {
	s.requireStarted()
	total, count := 0, 0
	for _, j := range s.admitted {
		if !j.finished() {
			continue
		}
		total += metric(j)
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// CleanUp releases the core array, drains and releases every waiting job,
// and tears down the ready queue. No handler may be called again until
// StartUp is called anew.
func (s *Scheduler) CleanUp() {
	s.requireStarted()
	for s.ready.Size() > 0 {
		s.ready.Poll()
	}
	s.cores = nil
	s.ready = nil
	s.admitted = nil
	s.seen = nil
	s.started = false
}

// DebugQueue renders the current scheduling state as "job_id(core_id)" for
// every running job in core order, followed by "job_id(-1)" for every
// waiting job in ready-queue order, space separated. It is a debugging aid
// with no bearing on scheduling decisions.
func (s *Scheduler) DebugQueue() string {
	s.requireStarted()
	out := ""
	for i := range s.cores {
		if s.cores[i].Running == nil {
			continue
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%d(%d)", s.cores[i].Running.JobID, i)
	}
	for i := 0; i < s.ready.Size(); i++ {
		j, ok := s.ready.At(i)
		if !ok {
			break
		}
		if out != "" {
			out += " "
		}
		out += fmt.Sprintf("%d(-1)", j.JobID)
	}
	return out
}

// Config returns the configuration the scheduler was started with, including
// any Quantum supplied through NewSchedulerWithConfig.
func (s *Scheduler) Config() Config {
	return s.config
}

// NumCores returns the number of cores the scheduler was started with.
func (s *Scheduler) NumCores() int {
	s.requireStarted()
	return len(s.cores)
}

// ReadyLen returns the number of jobs currently waiting in the ready queue.
func (s *Scheduler) ReadyLen() int {
	s.requireStarted()
	return s.ready.Size()
}

// CoreRunning returns the job id running on coreID, or Unset if idle.
func (s *Scheduler) CoreRunning(coreID int) int {
	s.requireStarted()
	c := s.requireValidCore(coreID)
	if c.Running == nil {
		return Unset
	}
	return c.Running.JobID
}
